package storage

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Arleycht/stream-bot/model"
)

const insertChatMessage = `
insert into chat_messages (
  channel, user_id, source_name, text, color,
  is_mod, is_subscriber, is_vip, is_first_message, emote_count, raw, received_at
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);`

// BatchConfig задаёт параметры батчинга для вставки сообщений.
type BatchConfig struct {
	MaxBatch      int
	FlushEvery    time.Duration
	ChanBuffer    int
	StatsLogEvery time.Duration
	FlushTimeout  time.Duration
}

// Batcher асинхронно вставляет сообщения чата через pgx.Batch.
type Batcher struct {
	input  chan model.ChatMessage
	config BatchConfig
	sender batchSender
	done   chan struct{}

	dropped  atomic.Uint64
	inserted atomic.Uint64
	failed   atomic.Uint64
}

type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// NewBatcher создаёт батчер и запускает фоновые флаши до отмены ctx.
func NewBatcher(ctx context.Context, pool *pgxpool.Pool, cfg BatchConfig) *Batcher {
	return newBatcher(ctx, pool, cfg)
}

func newBatcher(ctx context.Context, sender batchSender, cfg BatchConfig) *Batcher {
	b := &Batcher{
		input:  make(chan model.ChatMessage, cfg.ChanBuffer),
		config: cfg,
		sender: sender,
		done:   make(chan struct{}),
	}

	go b.run(ctx)

	return b
}

// Enqueue пытается добавить сообщение в очередь; при переполнении возвращает false.
func (b *Batcher) Enqueue(msg model.ChatMessage) bool {
	select {
	case b.input <- msg:
		return true
	default:
		dropped := b.dropped.Add(1)
		if dropped%100 == 0 {
			log.Printf("батчер: очередь заполнена, всего отброшено %d сообщений", dropped)
		}
		return false
	}
}

// Dropped возвращает число сообщений, отброшенных из-за переполнения.
func (b *Batcher) Dropped() uint64 {
	return b.dropped.Load()
}

// Inserted возвращает число строк, переданных в успешные флаши.
func (b *Batcher) Inserted() uint64 {
	return b.inserted.Load()
}

// Wait блокируется до финального флаша после отмены контекста.
func (b *Batcher) Wait() {
	<-b.done
}

func (b *Batcher) run(ctx context.Context) {
	defer close(b.done)

	flushTicker := time.NewTicker(b.config.FlushEvery)
	statsTicker := time.NewTicker(b.config.StatsLogEvery)
	defer flushTicker.Stop()
	defer statsTicker.Stop()

	batch := &pgx.Batch{}
	var interval uint64

	flush := func() {
		n := batch.Len()
		if n == 0 {
			return
		}

		dbCtx, cancel := context.WithTimeout(context.Background(), b.config.FlushTimeout)
		defer cancel()

		if err := b.sender.SendBatch(dbCtx, batch).Close(); err != nil {
			b.failed.Add(uint64(n))
			log.Printf("батчер: ошибка флаша %d строк: %v", n, err)
		} else {
			b.inserted.Add(uint64(n))
			interval += uint64(n)
		}

		batch = &pgx.Batch{}
	}

	for {
		select {
		case <-ctx.Done():
			b.drain(batch)
			flush()
			log.Printf("батчер: контекст отменён, всего вставлено строк = %d, с ошибкой = %d", b.inserted.Load(), b.failed.Load())
			return
		case <-flushTicker.C:
			flush()
		case <-statsTicker.C:
			log.Printf("батчер: вставлено %d строк за %s (всего %d)", interval, b.config.StatsLogEvery, b.inserted.Load())
			interval = 0
		case msg := <-b.input:
			queueChatMessage(batch, msg)
			if batch.Len() >= b.config.MaxBatch {
				flush()
			}
		}
	}
}

// drain забирает сообщения, поставленные в очередь до отмены.
func (b *Batcher) drain(batch *pgx.Batch) {
	for {
		select {
		case msg := <-b.input:
			queueChatMessage(batch, msg)
		default:
			return
		}
	}
}

func queueChatMessage(batch *pgx.Batch, msg model.ChatMessage) {
	batch.Queue(insertChatMessage,
		msg.Channel, int64(msg.UserID), msg.SourceName, msg.Text, nullable(msg.Color),
		msg.IsMod, msg.IsSubscriber, msg.IsVIP, msg.IsFirstMessage, msg.EmoteCount, msg.Raw,
		msg.ReceivedAt.UTC(),
	)
}

// nullable превращает пустую строку в NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
