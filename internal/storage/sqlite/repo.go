// Package sqlite implements a SQLite-backed storage.Repository using the
// pure-Go modernc.org/sqlite driver. SQLite has no bulk-load API, so batches
// are plain INSERTs inside one transaction (see sqldb).
package sqlite

import (
	"context"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/sischcode/patti-csv/internal/ddl"
	"github.com/sischcode/patti-csv/internal/storage/sqldb"
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a file path or URI understood by the driver, e.g.
	//   "out.db"
	//   "file:out.db?_pragma=busy_timeout(5000)"
	DSN string

	// Table is the target table. "main.events" style names pass through.
	Table string
}

// NewRepository opens the database and returns a repository plus a close
// function.
func NewRepository(ctx context.Context, cfg Config) (*sqldb.Repository, func(), error) {
	r, err := sqldb.Open(ctx, "sqlite", cfg.DSN, cfg.Table, ddl.SQLite)
	if err != nil {
		return nil, nil, err
	}
	// Single writer; avoids SQLITE_BUSY between pooled connections.
	r.DB.SetMaxOpenConns(1)
	if _, err := r.DB.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		r.Close()
		return nil, nil, fmt.Errorf("sqlite: pragma: %w", err)
	}
	return r, r.Close, nil
}
