// Package transformer is the token sanitize pipeline: ordered chains of
// string transforms (transitizers) applied to every token after tokenizing
// and before typing. A Map holds one global chain and one chain per column
// index; the global chain always runs first.
package transformer

import (
	"fmt"
	"maps"
	"slices"
)

// Transitizer transforms a single token or fails. String describes the
// transitizer and its state; it is used to attribute errors.
type Transitizer interface {
	Apply(token string) (string, error)
	fmt.Stringer
}

// Chain is an ordered list of transitizers.
type Chain []Transitizer

// Apply folds token through the chain. On failure it returns the
// transitizer that failed alongside the error.
func (c Chain) Apply(token string) (string, Transitizer, error) {
	out := token
	for _, t := range c {
		s, err := t.Apply(out)
		if err != nil {
			return "", t, err
		}
		out = s
	}
	return out, nil, nil
}

// Map resolves the chains for a column: Global applies to every column,
// Columns[i] only to column i.
type Map struct {
	Global  Chain
	Columns map[int]Chain
}

// Empty reports whether no transitizer is configured at all.
func (m Map) Empty() bool {
	if len(m.Global) > 0 {
		return false
	}
	for _, c := range m.Columns {
		if len(c) > 0 {
			return false
		}
	}
	return true
}

// AddGlobal appends to the global chain.
func (m *Map) AddGlobal(ts ...Transitizer) {
	m.Global = append(m.Global, ts...)
}

// AddColumn appends to the chain of column col.
func (m *Map) AddColumn(col int, ts ...Transitizer) {
	if m.Columns == nil {
		m.Columns = make(map[int]Chain)
	}
	m.Columns[col] = append(m.Columns[col], ts...)
}

// Clone returns a copy whose chains can be appended to without affecting m.
func (m Map) Clone() Map {
	out := Map{Global: slices.Clone(m.Global)}
	if m.Columns != nil {
		out.Columns = maps.Clone(m.Columns)
		for k, v := range out.Columns {
			out.Columns[k] = slices.Clone(v)
		}
	}
	return out
}

// Apply sanitizes the token found at (line, col): global chain first, then
// the chain of col. Errors are *SanitizeError carrying the position and the
// failing transitizer appended to the root cause.
func (m Map) Apply(token string, line, col int) (string, error) {
	s, t, err := m.Global.Apply(token)
	if err != nil {
		return "", asSanitizeError(err, token).
			Extend(fmt.Sprintf(" Error in/from global sanitizer: %s.", t), line, -1)
	}
	local, ok := m.Columns[col]
	if !ok {
		return s, nil
	}
	out, t, err := local.Apply(s)
	if err != nil {
		return "", asSanitizeError(err, s).
			Extend(fmt.Sprintf(" Error in/from local sanitizer: %s.", t), line, col)
	}
	return out, nil
}
