// Package ddl derives CREATE TABLE statements for a row layout. A small,
// dialect-aware model (TableDef/ColumnDef) sits between the typed row
// template and the rendered SQL.
package ddl

import (
	"fmt"
	"strings"

	"github.com/sischcode/patti-csv/internal/schema"
)

// FromTemplate builds a table definition with one nullable column per
// template column, typed for d.
func FromTemplate(fqn string, tmpl schema.Template, d Dialect) TableDef {
	td := TableDef{FQN: fqn, Columns: make([]ColumnDef, len(tmpl))}
	for i, c := range tmpl {
		td.Columns[i] = ColumnDef{Name: c.Name, SQLType: d.SQLType(c.Type), Nullable: true}
	}
	return td
}

// BuildCreateTableSQL renders an idempotent CREATE TABLE statement for d.
//
// Rules:
//
//   - t.FQN must be non-empty; every segment is quoted for d.
//
//   - Each column must have a non-empty Name and SQLType. A column renders
//     as <Name> <SQLType> [NOT NULL].
//
//   - Columns with PrimaryKey == true are collected into a trailing
//     PRIMARY KEY (...) clause.
//
//   - Postgres, MySQL and SQLite use CREATE TABLE IF NOT EXISTS; SQL Server
//     guards the statement with OBJECT_ID.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	seen := make(map[string]struct{}, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		if _, dup := seen[name]; dup {
			return "", fmt.Errorf("ddl: duplicate column %s in table %s", name, fqn)
		}
		seen[name] = struct{}{}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		def := d.Quote(name) + " " + typ
		if !c.Nullable {
			def += " NOT NULL"
		}
		cols = append(cols, def)
		if c.PrimaryKey {
			pks = append(pks, d.Quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	body := fmt.Sprintf("(\n  %s\n)", strings.Join(cols, ",\n  "))
	if d == MSSQL {
		lit := strings.ReplaceAll(d.QuoteFQN(fqn), "'", "''")
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nCREATE TABLE %s %s;", lit, d.QuoteFQN(fqn), body), nil
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s %s;", d.QuoteFQN(fqn), body), nil
}
