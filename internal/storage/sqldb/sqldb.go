// Package sqldb implements storage.Repository on top of database/sql. It
// performs batched INSERTs through a prepared statement inside one
// transaction per batch; dialect-specific quoting and placeholders come from
// ddl.Dialect. Backends without a dedicated bulk API embed it directly.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sischcode/patti-csv/internal/ddl"
	"github.com/sischcode/patti-csv/internal/storage"
)

// Repository is a database/sql backed storage.Repository.
type Repository struct {
	DB      *sql.DB
	Table   string
	dialect ddl.Dialect
}

var _ storage.Repository = (*Repository)(nil)

// Open opens driverName with dsn and pings it with a short timeout.
func Open(ctx context.Context, driverName, dsn, table string, d ddl.Dialect) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s: DSN must not be empty", d)
	}
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("%s: table must not be empty", d)
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", d, err)
	}
	return New(db, table, d), nil
}

// New wraps an already opened handle.
func New(db *sql.DB, table string, d ddl.Dialect) *Repository {
	return &Repository{DB: db, Table: table, dialect: d}
}

// Dialect implements storage.Repository.
func (r *Repository) Dialect() ddl.Dialect { return r.dialect }

// InsertSQL renders the single-row INSERT used by CopyFrom.
func (r *Repository) InsertSQL(columns []string) string {
	cols := make([]string, len(columns))
	ph := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = r.dialect.Quote(c)
		ph[i] = r.dialect.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.dialect.QuoteFQN(r.Table), strings.Join(cols, ", "), strings.Join(ph, ", "))
}

// CopyFrom inserts rows in a single transaction. Every row must have
// len(columns) values. On error nothing of the batch is committed.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("%s: CopyFrom: columns must not be empty", r.dialect)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin tx: %w", r.dialect, err)
	}
	stmt, err := tx.PrepareContext(ctx, r.InsertSQL(columns))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("%s: prepare insert: %w", r.dialect, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("%s: CopyFrom: row %d has %d values, want %d", r.dialect, i, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, storage.DriverValues(row)...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("%s: insert row %d: %w", r.dialect, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", r.dialect, err)
	}
	return int64(len(rows)), nil
}

// Exec executes a single statement, typically DDL. Blank statements are a
// no-op.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.DB.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("%s: exec: %w", r.dialect, err)
	}
	return nil
}

// Close closes the underlying handle.
func (r *Repository) Close() {
	if r.DB != nil {
		_ = r.DB.Close()
	}
}
