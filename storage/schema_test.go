package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

type stubExecer struct {
	queries []string
	err     error
}

func (s *stubExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	s.queries = append(s.queries, sql)
	return pgconn.CommandTag{}, s.err
}

func TestMigrateRunsAllStatements(t *testing.T) {
	db := &stubExecer{}
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	if len(db.queries) != len(migrations) || !strings.Contains(db.queries[0], "chat_messages") {
		t.Fatalf("unexpected queries: %v", db.queries)
	}
}

func TestMigrateStopsOnError(t *testing.T) {
	db := &stubExecer{err: errors.New("permission denied")}
	if err := Migrate(context.Background(), db); err == nil {
		t.Fatalf("expected error")
	}
	if len(db.queries) != 1 {
		t.Fatalf("expected to stop after first failure, ran %d", len(db.queries))
	}
}
