package schema

import (
	"bytes"
	"encoding/json"

	"github.com/sischcode/patti-csv/internal/value"
)

// Cell is one typed field of a Row.
type Cell struct {
	Name  string
	Index int
	Type  value.Type
	Value value.Value
}

// Row is an ordered sequence of cells, one per template column.
type Row []Cell

// Values returns the cell values as database/sql friendly Go values; absent
// cells are nil.
func (r Row) Values() []any {
	out := make([]any, len(r))
	for i, c := range r {
		out[i] = c.Value.Interface()
	}
	return out
}

// Strings renders every cell; absent cells render as "".
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Value.String()
	}
	return out
}

// Map keys the cell values by column name. Duplicate names keep the last.
func (r Row) Map() map[string]any {
	out := make(map[string]any, len(r))
	for _, c := range r {
		out[c.Name] = c.Value.Interface()
	}
	return out
}

// MarshalJSON encodes r as an object whose keys keep the column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		v, err := c.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
