package ddl

import (
	"strconv"
	"strings"

	"github.com/sischcode/patti-csv/internal/value"
)

// Dialect captures what differs between the supported SQL databases:
// identifier quoting, bind placeholders, the column type chosen for each
// value type and how CREATE TABLE is guarded.
type Dialect int

const (
	Postgres Dialect = iota
	MySQL
	MSSQL
	SQLite
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case MSSQL:
		return "mssql"
	case SQLite:
		return "sqlite"
	}
	return "Dialect(" + strconv.Itoa(int(d)) + ")"
}

// Quote quotes a single identifier segment.
func (d Dialect) Quote(id string) string {
	switch d {
	case MySQL:
		return "`" + strings.ReplaceAll(id, "`", "``") + "`"
	case MSSQL:
		return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
	}
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes a possibly schema-qualified name segment by segment:
// "public.t" becomes "\"public\".\"t\"" for Postgres.
func (d Dialect) QuoteFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.Quote(p)
	}
	return strings.Join(parts, ".")
}

// Placeholder returns the bind parameter for the 1-based position n.
func (d Dialect) Placeholder(n int) string {
	switch d {
	case Postgres:
		return "$" + strconv.Itoa(n)
	case MSSQL:
		return "@p" + strconv.Itoa(n)
	}
	return "?"
}

// sqlTypes is indexed by value type, then by Dialect
// (Postgres, MySQL, MSSQL, SQLite).
var sqlTypes = map[value.Type][4]string{
	value.String:     {"TEXT", "TEXT", "NVARCHAR(MAX)", "TEXT"},
	value.Char:       {"CHAR(1)", "CHAR(1)", "NCHAR(1)", "TEXT"},
	value.Int8:       {"SMALLINT", "TINYINT", "SMALLINT", "INTEGER"},
	value.Int16:      {"SMALLINT", "SMALLINT", "SMALLINT", "INTEGER"},
	value.Int32:      {"INTEGER", "INT", "INT", "INTEGER"},
	value.Int64:      {"BIGINT", "BIGINT", "BIGINT", "INTEGER"},
	value.UInt8:      {"SMALLINT", "TINYINT UNSIGNED", "TINYINT", "INTEGER"},
	value.UInt16:     {"INTEGER", "SMALLINT UNSIGNED", "INT", "INTEGER"},
	value.UInt32:     {"BIGINT", "INT UNSIGNED", "BIGINT", "INTEGER"},
	value.UInt64:     {"NUMERIC(20,0)", "BIGINT UNSIGNED", "DECIMAL(20,0)", "INTEGER"},
	value.Float32:    {"REAL", "FLOAT", "REAL", "REAL"},
	value.Float64:    {"DOUBLE PRECISION", "DOUBLE", "FLOAT", "REAL"},
	value.Bool:       {"BOOLEAN", "BOOLEAN", "BIT", "INTEGER"},
	value.Decimal:    {"NUMERIC", "DECIMAL(38,10)", "DECIMAL(38,10)", "NUMERIC"},
	value.Date:       {"DATE", "DATE", "DATE", "TEXT"},
	value.DateTime:   {"TIMESTAMP", "DATETIME(6)", "DATETIME2", "TEXT"},
	value.DateTimeTZ: {"TIMESTAMPTZ", "TIMESTAMP(6)", "DATETIMEOFFSET", "TEXT"},
}

// SQLType maps a value type to the column type used for it in d.
func (d Dialect) SQLType(t value.Type) string {
	types, ok := sqlTypes[t]
	if !ok || d < Postgres || d > SQLite {
		return ""
	}
	return types[d]
}
