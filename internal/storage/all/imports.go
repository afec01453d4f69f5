// Package all registers every built-in storage backend.
package all

import (
	_ "github.com/sischcode/patti-csv/internal/storage/mssql"
	_ "github.com/sischcode/patti-csv/internal/storage/mysql"
	_ "github.com/sischcode/patti-csv/internal/storage/postgres"
	_ "github.com/sischcode/patti-csv/internal/storage/sqlite"
)
