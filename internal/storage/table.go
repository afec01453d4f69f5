package storage

import (
	"context"
	"fmt"

	"github.com/sischcode/patti-csv/internal/ddl"
	"github.com/sischcode/patti-csv/internal/schema"
)

// CreateTableSQL renders the CREATE TABLE statement for a row layout.
func CreateTableSQL(d ddl.Dialect, table string, tmpl schema.Template) (string, error) {
	return ddl.BuildCreateTableSQL(ddl.FromTemplate(table, tmpl, d), d)
}

// EnsureTable creates table for tmpl unless it already exists.
func EnsureTable(ctx context.Context, repo Repository, table string, tmpl schema.Template) error {
	stmt, err := CreateTableSQL(repo.Dialect(), table, tmpl)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}
