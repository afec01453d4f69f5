// Package parser holds what every row parser in this module shares: the
// error taxonomy and the pull-style RowReader contract.
package parser

import "github.com/sischcode/patti-csv/internal/schema"

// RowReader yields typed rows one at a time. Next returns io.EOF once the
// input is exhausted; any other error belongs to a single step and the
// caller may decide to continue.
type RowReader interface {
	Next() (schema.Row, error)
}
