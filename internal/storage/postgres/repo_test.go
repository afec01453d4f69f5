package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/sischcode/patti-csv/internal/ddl"
	"github.com/sischcode/patti-csv/internal/storage"
)

func TestIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    pgx.Identifier
		wantErr bool
	}{
		{"events", pgx.Identifier{"events"}, false},
		{" public.events ", pgx.Identifier{"public", "events"}, false},
		{"", nil, true},
		{"public.", nil, true},
	}
	for _, tt := range tests {
		got, err := Identifier(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("Identifier(%q) err = %v", tt.in, err)
		}
		if !tt.wantErr && got.Sanitize() != tt.want.Sanitize() {
			t.Fatalf("Identifier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRepository_BadTableFailsBeforeConnect(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "postgres://nowhere", Table: ""}); err == nil {
		t.Fatalf("expected error for empty table")
	}
}

func TestRegistration(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	closed := false
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		id, err := Identifier(cfg.Table)
		if err != nil {
			return nil, nil, err
		}
		return &Repository{ident: id}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "postgres", DSN: "x", Table: "public.t"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if repo.Dialect() != ddl.Postgres {
		t.Fatalf("dialect = %v", repo.Dialect())
	}
	if n, err := repo.CopyFrom(context.Background(), []string{"a"}, nil); n != 0 || err != nil {
		t.Fatalf("empty CopyFrom = %d, %v", n, err)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close not delegated")
	}
}
