package color

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey — hash, в котором хранятся назначенные цвета.
const DefaultRedisKey = "stream-bot:colors"

// RedisStore хранит таблицу цветов в Redis, чтобы несколько процессов
// назначали пользователю один цвет. Перед Redis стоит локальная Table.
type RedisStore struct {
	rdb     *redis.Client
	key     string
	timeout time.Duration
	cache   *Table
}

// NewRedisStore создаёт хранилище поверх готового клиента Redis.
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{
		rdb:     rdb,
		key:     key,
		timeout: 2 * time.Second,
		cache:   NewTable(),
	}
}

// Warm загружает в локальный кэш все цвета, уже записанные в Redis.
func (s *RedisStore) Warm(ctx context.Context) error {
	entries, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return fmt.Errorf("color store: load %s: %w", s.key, err)
	}
	for name, raw := range entries {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			log.Printf("color store: пропущено значение %q для %q: %v", raw, name, err)
			continue
		}
		s.cache.SetColor(name, Color(v))
	}
	return nil
}

// Color возвращает общий цвет имени. При недоступности Redis цвет
// назначается локально.
func (s *RedisStore) Color(name string) Color {
	if c, ok := s.cache.Lookup(name); ok {
		return c
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	// HSETNX оставляет цвет первого записавшего процесса
	candidate := s.cache.random()
	if err := s.rdb.HSetNX(ctx, s.key, name, uint32(candidate)).Err(); err != nil {
		log.Printf("color store: hsetnx %q: %v", name, err)
		return s.cache.Color(name)
	}

	v, err := s.rdb.HGet(ctx, s.key, name).Uint64()
	if err != nil {
		log.Printf("color store: hget %q: %v", name, err)
		return s.cache.Color(name)
	}

	return s.cache.SetColor(name, Color(v))
}

// SetColor переопределяет цвет имени в Redis и в локальном кэше.
func (s *RedisStore) SetColor(name string, c Color) Color {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.rdb.HSet(ctx, s.key, name, uint32(c)).Err(); err != nil {
		log.Printf("color store: hset %q: %v", name, err)
	}
	return s.cache.SetColor(name, c)
}
