package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Arleycht/stream-bot/color"
	"github.com/Arleycht/stream-bot/config"
	"github.com/Arleycht/stream-bot/service"
	"github.com/Arleycht/stream-bot/storage"
	"github.com/Arleycht/stream-bot/tokens"
	"github.com/Arleycht/stream-bot/twitch"
)

func main() {
	configPath := flag.String("config", os.Getenv("STREAMBOT_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	channels := append(config.NormalizeChannels(flag.Args()), cfg.Twitch.Channels...)
	if len(channels) == 0 {
		log.Fatalf("expected at least 1 argument for channel_name")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	colors := newColors(ctx, cfg.Redis)

	var (
		sink    service.ChatSink
		stored  service.StorageStats
		batcher *storage.Batcher
	)
	if cfg.Postgres.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
		if err != nil {
			log.Fatalf("pgxpool.New: %v", err)
		}
		defer pool.Close()

		if err := storage.Migrate(ctx, pool); err != nil {
			log.Fatalf("storage: %v", err)
		}

		batcher = storage.NewBatcher(ctx, pool, storage.BatchConfig{
			MaxBatch:      cfg.Batch.MaxBatch,
			FlushEvery:    cfg.Batch.FlushEvery,
			ChanBuffer:    cfg.Batch.ChanBuffer,
			StatsLogEvery: cfg.Batch.StatsLogEvery,
			FlushTimeout:  cfg.Batch.FlushTimeout,
		})
		sink, stored = batcher, batcher
	}

	opts := []twitch.Option{twitch.WithQueueSize(cfg.Twitch.QueueSize)}
	if cfg.Twitch.URL != "" {
		opts = append(opts, twitch.WithURL(cfg.Twitch.URL))
	}
	if token, ok := credentials(cfg.Twitch); ok {
		log.Printf("logging in as %s", token.Nick)
		opts = append(opts, twitch.WithCredentials(token.Nick, token.Password()))
	}

	client, err := twitch.Connect(ctx, colors, opts...)
	if err != nil {
		log.Fatalf("twitch connect failed: %v", err)
	}

	log.Printf("connected. joining: %v", channels)
	for _, ch := range channels {
		if err := client.JoinChannel(ch); err != nil {
			log.Fatalf("join %s: %v", ch, err)
		}
	}

	if cfg.Status.Addr != "" {
		go serveStatus(ctx, cfg.Status.Addr, service.StatusHandler(client, stored))
	}

	srv := service.New(client, service.NewHandler(os.Stdout, sink))
	runErr := srv.Run(ctx)

	log.Println("shutting down...")
	client.Close()
	cancel()
	if batcher != nil {
		batcher.Wait()
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Printf("service run failed: %v", runErr)
		os.Exit(1)
	}
}

// credentials берёт логин из конфигурации, затем из файла токена.
func credentials(cfg config.TwitchConfig) (tokens.Token, bool) {
	if !cfg.Anonymous() {
		return tokens.Token{Nick: cfg.Username, Access: cfg.OAuthToken}, true
	}

	token, err := tokens.Load(tokens.FileTokenStore{Path: cfg.TokenFile}, time.Now())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("tokens: %v, logging in anonymously", err)
		}
		return tokens.Token{}, false
	}
	return token, true
}

// newColors выбирает общее хранилище цветов в Redis или таблицу в памяти.
func newColors(ctx context.Context, cfg config.RedisConfig) color.Assignor {
	if cfg.Addr == "" {
		return color.NewTable()
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("could not connect to Redis at %s, using in-memory colors: %v", cfg.Addr, err)
		rdb.Close()
		return color.NewTable()
	}

	store := color.NewRedisStore(rdb, cfg.Key)
	if err := store.Warm(pingCtx); err != nil {
		log.Printf("%v", err)
	}
	log.Printf("connected to Redis at %s", cfg.Addr)
	return store
}

func serveStatus(ctx context.Context, addr string, h http.Handler) {
	server := &http.Server{Addr: addr, Handler: h}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("status server listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("status server: %v", err)
	}
}
