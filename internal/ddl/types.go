package ddl

// ColumnDef describes a single column of a TableDef.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, TIMESTAMPTZ)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds the table name, optionally schema-qualified in dotted
// form ("schema.table"), and an ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
