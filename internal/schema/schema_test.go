package schema

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/sischcode/patti-csv/internal/value"
)

/*
TestTemplate_HeaderPrecedence: an explicit header wins over the parsed one;
without both, headerless mode falls back to the column index.
*/
func TestTemplate_HeaderPrecedence(t *testing.T) {
	t.Parallel()

	typings := []ColumnTyping{{Header: "H1-cfg"}, {}}
	tmpl, err := NewTemplateWithHeader([]string{"H1", "H2"}, typings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tmpl.Names(); !reflect.DeepEqual(got, []string{"H1-cfg", "H2"}) {
		t.Fatalf("names = %v", got)
	}

	headerless := NewTemplate(StringTypings(2))
	if got := headerless.Names(); !reflect.DeepEqual(got, []string{"0", "1"}) {
		t.Fatalf("headerless names = %v", got)
	}

	mixed := NewTemplate([]ColumnTyping{{}, {Header: "amount"}})
	if got := mixed.Names(); !reflect.DeepEqual(got, []string{"0", "amount"}) {
		t.Fatalf("mixed names = %v", got)
	}
}

func TestTemplate_MissingHeader(t *testing.T) {
	t.Parallel()

	_, err := NewTemplateWithHeader([]string{"a"}, StringTypings(2))
	var mh *MissingHeaderError
	if !errors.As(err, &mh) || mh.Column != 1 {
		t.Fatalf("want MissingHeaderError for column 1, got %v", err)
	}
	if err.Error() != "No header provided for column#1" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestTemplate_NewRowIsIndependent(t *testing.T) {
	t.Parallel()

	tmpl := NewTemplate([]ColumnTyping{{Type: value.Int32, MapToNone: []string{"-"}}})
	r1 := tmpl.NewRow()
	r1[0].Value = value.Of(value.Int32, int32(5))
	r2 := tmpl.NewRow()
	if !r2[0].Value.Absent() || r2[0].Type != value.Int32 || r2[0].Name != "0" {
		t.Fatalf("fresh row = %+v", r2[0])
	}
}

func TestTemplate_HeaderRow(t *testing.T) {
	t.Parallel()

	tmpl, err := NewTemplateWithHeader([]string{"a", "b"}, []ColumnTyping{{Type: value.Int8}, {Type: value.Date}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hr := tmpl.HeaderRow()
	for i, c := range hr {
		if c.Type != value.String || c.Value.Type != value.String {
			t.Fatalf("cell %d not String: %+v", i, c)
		}
	}
	if got := hr.Strings(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("header values = %v", got)
	}
}

/*
TestColumn_Resolve covers the typing rule: empty is absent regardless of
type, String without none-literals is verbatim, everything else is parsed.
*/
func TestColumn_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		col     Column
		token   string
		want    value.Value
		wantErr bool
	}{
		{"empty typed", Column{Type: value.Int32, Pattern: "%Y", MapToNone: []string{"x"}}, "", value.None(value.Int32), false},
		{"empty string", Column{Type: value.String}, "", value.None(value.String), false},
		{"verbatim string", Column{Type: value.String}, " a b ", value.Str(" a b "), false},
		{"string none literal", Column{Type: value.String, MapToNone: []string{"NULL"}}, "NULL", value.None(value.String), false},
		{"string not none", Column{Type: value.String, MapToNone: []string{"NULL"}}, "null", value.Str("null"), false},
		{"int", Column{Type: value.Int16}, "42", value.Of(value.Int16, int16(42)), false},
		{"int none literal", Column{Type: value.Int16, MapToNone: []string{"n/a"}}, "n/a", value.None(value.Int16), false},
		{"int garbage", Column{Type: value.Int16}, "4x", value.Value{}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.col.Resolve(tt.token)
			if tt.wantErr {
				var pe *value.ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("want *value.ParseError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRow_MarshalJSON(t *testing.T) {
	t.Parallel()

	r := Row{
		{Name: "z", Type: value.String, Value: value.Str("x")},
		{Name: "a", Type: value.Int64, Value: value.Of(value.Int64, int64(3))},
		{Name: "m", Type: value.Bool, Value: value.None(value.Bool)},
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"z":"x","a":3,"m":null}` {
		t.Fatalf("got %s", b)
	}
	if got := r.Values(); !reflect.DeepEqual(got, []any{"x", int64(3), nil}) {
		t.Fatalf("values = %#v", got)
	}

	nan, err := value.Parse("NaN", value.Float64, "", nil)
	if err != nil {
		t.Fatalf("parse NaN: %v", err)
	}
	b, err = json.Marshal(Row{{Name: "f", Type: value.Float64, Value: nan}})
	if err != nil {
		t.Fatalf("marshal NaN: %v", err)
	}
	if string(b) != `{"f":"NaN"}` {
		t.Fatalf("NaN row = %s", b)
	}
}

func TestCloneTypings(t *testing.T) {
	t.Parallel()

	in := []ColumnTyping{{MapToNone: []string{"a"}}}
	out := CloneTypings(in)
	out[0].MapToNone[0] = "b"
	if in[0].MapToNone[0] != "a" {
		t.Fatalf("clone shares MapToNone")
	}
}
