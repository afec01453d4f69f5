// Package mysql provides a MySQL-backed storage.Repository using
// go-sql-driver/mysql.
package mysql

import (
	"context"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/sischcode/patti-csv/internal/ddl"
	"github.com/sischcode/patti-csv/internal/storage/sqldb"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN   string // go-sql-driver DSN, e.g. "user:pw@tcp(localhost:3306)/db"
	Table string
}

// NormalizeDSN validates dsn and enables the options the loader relies on:
// parseTime for DATE/DATETIME round trips and UTC as the session location.
func NormalizeDSN(dsn string) (string, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql: parse dsn: %w", err)
	}
	mc.ParseTime = true
	if mc.Params == nil {
		mc.Params = map[string]string{}
	}
	if _, ok := mc.Params["time_zone"]; !ok {
		mc.Params["time_zone"] = "'+00:00'"
	}
	return mc.FormatDSN(), nil
}

// NewRepository opens a connection pool and returns a repository plus a
// close function.
func NewRepository(ctx context.Context, cfg Config) (*sqldb.Repository, func(), error) {
	dsn, err := NormalizeDSN(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	r, err := sqldb.Open(ctx, "mysql", dsn, cfg.Table, ddl.MySQL)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}
