package schema

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/sischcode/patti-csv/internal/value"
)

// Column is one slot of a Template.
type Column struct {
	Name      string
	Index     int
	Type      value.Type
	Pattern   string
	MapToNone []string
}

// Template is the per-run row layout. It is built once and cloned into a
// fresh Row for every data line.
type Template []Column

// MissingHeaderError reports a column whose name could be resolved neither
// from its typing nor from the header line.
type MissingHeaderError struct {
	Column int
}

func (e *MissingHeaderError) Error() string {
	return fmt.Sprintf("No header provided for column#%d", e.Column)
}

// NewTemplate builds the layout for headerless input. Columns without an
// explicit header are named after their zero-based index.
func NewTemplate(typings []ColumnTyping) Template {
	t := make(Template, len(typings))
	for i, ct := range typings {
		name := ct.Header
		if name == "" {
			name = strconv.Itoa(i)
		}
		t[i] = column(i, name, ct)
	}
	return t
}

// NewTemplateWithHeader builds the layout from the tokens of a header line.
// An explicit header in a typing wins over the parsed one.
func NewTemplateWithHeader(header []string, typings []ColumnTyping) (Template, error) {
	t := make(Template, len(typings))
	for i, ct := range typings {
		name := ct.Header
		if name == "" {
			if i >= len(header) {
				return nil, &MissingHeaderError{Column: i}
			}
			name = header[i]
		}
		t[i] = column(i, name, ct)
	}
	return t, nil
}

func column(i int, name string, ct ColumnTyping) Column {
	return Column{
		Name:      name,
		Index:     i,
		Type:      ct.Type,
		Pattern:   ct.Pattern,
		MapToNone: slices.Clone(ct.MapToNone),
	}
}

// Names returns the column names in order.
func (t Template) Names() []string {
	out := make([]string, len(t))
	for i, c := range t {
		out[i] = c.Name
	}
	return out
}

// NewRow clones t into a row of absent cells.
func (t Template) NewRow() Row {
	r := make(Row, len(t))
	for i, c := range t {
		r[i] = Cell{Name: c.Name, Index: c.Index, Type: c.Type, Value: value.None(c.Type)}
	}
	return r
}

// HeaderRow returns an all-String row whose values are the column names.
func (t Template) HeaderRow() Row {
	r := make(Row, len(t))
	for i, c := range t {
		r[i] = Cell{Name: c.Name, Index: c.Index, Type: value.String, Value: value.Str(c.Name)}
	}
	return r
}

// Resolve types a sanitized token for this column. The empty token is
// always absent. A String column without none-literals takes the token
// verbatim.
func (c Column) Resolve(token string) (value.Value, error) {
	if token == "" {
		return value.None(c.Type), nil
	}
	if c.Type == value.String && len(c.MapToNone) == 0 {
		return value.Str(token), nil
	}
	return value.Parse(token, c.Type, c.Pattern, c.MapToNone)
}
