package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config агрегирует значения конфигурации из YAML файла и переменных окружения.
type Config struct {
	Twitch   TwitchConfig   `koanf:"twitch"`
	Postgres PostgresConfig `koanf:"postgres"`
	Redis    RedisConfig    `koanf:"redis"`
	Batch    BatchConfig    `koanf:"batch"`
	Status   StatusConfig   `koanf:"status"`
}

// TwitchConfig содержит учётные данные и каналы для IRC клиента.
// Без Username и OAuthToken клиент входит анонимно.
type TwitchConfig struct {
	Username   string   `koanf:"username"`
	OAuthToken string   `koanf:"oauth_token"`
	Channels   []string `koanf:"channels"`
	TokenFile  string   `koanf:"token_file"`
	URL        string   `koanf:"url"`
	QueueSize  int      `koanf:"queue_size"`
}

// Anonymous сообщает, что учётные данные не заданы.
func (t TwitchConfig) Anonymous() bool {
	return t.Username == "" && t.OAuthToken == ""
}

// PostgresConfig хранит параметры подключения к пулу базы данных.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	DB       string `koanf:"db"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

// Enabled сообщает, нужно ли сохранять чат в Postgres.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// DSN собирает строку подключения для pgx/pgxpool.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.DB)
}

// RedisConfig задаёт общее хранилище цветов. Пустой Addr — таблица в памяти.
type RedisConfig struct {
	Addr string `koanf:"addr"`
	Key  string `koanf:"key"`
}

// BatchConfig задаёт параметры батчинга и флашей при записи чатов.
type BatchConfig struct {
	MaxBatch      int           `koanf:"max_batch"`
	FlushEvery    time.Duration `koanf:"flush_every"`
	ChanBuffer    int           `koanf:"chan_buffer"`
	StatsLogEvery time.Duration `koanf:"stats_log_every"`
	FlushTimeout  time.Duration `koanf:"flush_timeout"`
}

// StatusConfig — адрес HTTP эндпоинта со статусом; пустой отключает его.
type StatusConfig struct {
	Addr string `koanf:"addr"`
}

func defaults() Config {
	return Config{
		Twitch: TwitchConfig{
			QueueSize: 1024,
		},
		Batch: BatchConfig{
			MaxBatch:      100,
			FlushEvery:    1500 * time.Millisecond,
			ChanBuffer:    4096,
			StatsLogEvery: 5 * time.Minute,
			FlushTimeout:  5 * time.Second,
		},
	}
}

// Load читает необязательный YAML файл path, затем переменные окружения,
// и возвращает валидированную Config.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if err := k.Unmarshal("", &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.Twitch.Channels = normalizeChannels(cfg.Twitch.Channels)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Twitch.Username, "TWITCH_USERNAME")
	setString(&cfg.Twitch.OAuthToken, "TWITCH_OAUTH_TOKEN")
	setString(&cfg.Twitch.TokenFile, "TWITCH_TOKEN_FILE")
	setString(&cfg.Twitch.URL, "TWITCH_URL")
	if v := env("TWITCH_CHANNELS"); v != "" {
		cfg.Twitch.Channels = strings.Split(v, ",")
	}
	if v := env("TWITCH_QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TWITCH_QUEUE_SIZE: %w", err)
		}
		cfg.Twitch.QueueSize = n
	}

	setString(&cfg.Postgres.Host, "POSTGRES_HOST")
	setString(&cfg.Postgres.Port, "POSTGRES_PORT")
	setString(&cfg.Postgres.DB, "POSTGRES_DB")
	setString(&cfg.Postgres.User, "POSTGRES_USER")
	setString(&cfg.Postgres.Password, "POSTGRES_PASSWORD")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Key, "REDIS_COLOR_KEY")

	setString(&cfg.Status.Addr, "STATUS_ADDR")
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

func (c Config) validate() error {
	if (c.Twitch.Username == "") != (c.Twitch.OAuthToken == "") {
		return fmt.Errorf("TWITCH_USERNAME и TWITCH_OAUTH_TOKEN задаются вместе")
	}
	if c.Twitch.QueueSize <= 0 {
		return fmt.Errorf("Twitch.QueueSize должен быть больше нуля")
	}

	if c.Postgres.Enabled() {
		if c.Postgres.Port == "" {
			return fmt.Errorf("требуется POSTGRES_PORT")
		}
		if c.Postgres.DB == "" {
			return fmt.Errorf("требуется POSTGRES_DB")
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("требуется POSTGRES_USER")
		}
		if c.Postgres.Password == "" {
			return fmt.Errorf("требуется POSTGRES_PASSWORD")
		}
	}

	if c.Batch.MaxBatch <= 0 {
		return fmt.Errorf("Batch.MaxBatch должен быть больше нуля")
	}
	if c.Batch.FlushEvery <= 0 {
		return fmt.Errorf("Batch.FlushEvery должен быть больше нуля")
	}
	if c.Batch.ChanBuffer <= 0 {
		return fmt.Errorf("Batch.ChanBuffer должен быть больше нуля")
	}
	if c.Batch.StatsLogEvery <= 0 {
		return fmt.Errorf("Batch.StatsLogEvery должен быть больше нуля")
	}
	if c.Batch.FlushTimeout <= 0 {
		return fmt.Errorf("Batch.FlushTimeout должен быть больше нуля")
	}

	return nil
}

// normalizeChannels убирает пробелы, ведущий '#' и пустые имена.
func normalizeChannels(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p), "#"))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeChannels применяет те же правила к именам из командной строки.
func NormalizeChannels(in []string) []string {
	return normalizeChannels(in)
}
