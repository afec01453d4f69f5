// Package schema resolves per-column typing into a row layout template and
// defines the typed rows cloned from it.
package schema

import (
	"slices"

	"github.com/sischcode/patti-csv/internal/value"
)

// ColumnTyping configures one column: an optional explicit header, the
// target type, an optional source pattern (dates) and the literals that
// must be read as absent.
type ColumnTyping struct {
	Header    string
	Type      value.Type
	Pattern   string
	MapToNone []string
}

// StringTypings returns n untyped String columns.
func StringTypings(n int) []ColumnTyping {
	return make([]ColumnTyping, n)
}

// CloneTypings deep-copies ts.
func CloneTypings(ts []ColumnTyping) []ColumnTyping {
	if ts == nil {
		return nil
	}
	out := make([]ColumnTyping, len(ts))
	for i, t := range ts {
		t.MapToNone = slices.Clone(t.MapToNone)
		out[i] = t
	}
	return out
}
