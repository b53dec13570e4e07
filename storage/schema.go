package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

var migrations = []string{
	`create table if not exists chat_messages (
  id               bigserial primary key,
  channel          text not null,
  user_id          bigint not null default 0,
  source_name      text not null,
  text             text not null,
  color            text,
  is_mod           boolean not null default false,
  is_subscriber    boolean not null default false,
  is_vip           boolean not null default false,
  is_first_message boolean not null default false,
  emote_count      integer not null default 0,
  raw              text not null,
  received_at      timestamptz not null
)`,
	`create index if not exists chat_messages_channel_received_at_idx
  on chat_messages (channel, received_at)`,
}

// Migrate создаёт таблицы, если их ещё нет.
func Migrate(ctx context.Context, db execer) error {
	for _, q := range migrations {
		if _, err := db.Exec(ctx, q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
