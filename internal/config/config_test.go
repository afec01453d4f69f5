package config

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/sischcode/patti-csv/internal/value"
)

// -----------------------------------------------------------------------------
// Config decoding tests
// -----------------------------------------------------------------------------
//
// These tests decode JSON strings into the config model. They pin the
// camelCase key names and the tagged sanitizer shape used by config files.

func TestLoad_FullConfig(t *testing.T) {
	t.Parallel()

	const js = `{
	  "comment": "Some optional explanation",
	  "parserOpts": {
	    "comment": "Some optional explanation",
	    "separatorChar": ",",
	    "enclosureChar": "\"",
	    "lines": {
	      "comment": "Some optional explanation",
	      "skipLinesFromStart": 1,
	      "skipLinesByStartswith": ["#", "-"],
	      "skipEmptyLines": true
	    },
	    "saveSkippedLines": false,
	    "firstLineIsHeader": true
	  },
	  "sanitizeColumns": [
	    { "comment": "all", "sanitizers": [{ "type": "trim", "spec": "all" }] },
	    { "idxs": [0], "sanitizers": [{ "type": "casing", "spec": "toLower" }] },
	    { "idxs": [1], "sanitizers": [{ "type": "casing", "spec": "toUpper" }] }
	  ],
	  "typeColumns": [
	    { "comment": "0", "header": "Header-1", "targetType": "Char" },
	    { "comment": "1", "header": "Header-2", "targetType": "String" },
	    { "comment": "2", "header": "Header-3", "targetType": "Int8" },
	    { "comment": "3", "header": "Header-4", "targetType": "DateTime", "srcPattern": "%FT%T" }
	  ],
	  "sink": { "kind": "sqlite", "options": { "dsn": "file:x.db", "table": "t" } },
	  "runtime": { "batchSize": 500, "workers": 2, "maxErrors": 10, "dedupe": true }
	}`

	c, err := Load(strings.NewReader(js))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	po := c.ParserOpts
	if po.SeparatorChar != ',' || po.EnclosureChar == nil || *po.EnclosureChar != '"' {
		t.Fatalf("separator/enclosure = %q/%v", po.SeparatorChar, po.EnclosureChar)
	}
	if !po.FirstLineIsHeader || po.SaveSkippedLines {
		t.Fatalf("flags = %+v", po)
	}
	wantLines := &Lines{
		Comment:               "Some optional explanation",
		SkipLinesFromStart:    1,
		SkipLinesByStartswith: []string{"#", "-"},
		SkipEmptyLines:        true,
	}
	if !reflect.DeepEqual(po.Lines, wantLines) {
		t.Fatalf("lines = %+v, want %+v", po.Lines, wantLines)
	}

	if len(c.SanitizeColumns) != 3 {
		t.Fatalf("sanitizeColumns len = %d", len(c.SanitizeColumns))
	}
	if c.SanitizeColumns[0].Idxs != nil || c.SanitizeColumns[1].Idxs[0] != 0 {
		t.Fatalf("idxs = %v / %v", c.SanitizeColumns[0].Idxs, c.SanitizeColumns[1].Idxs)
	}
	if s := c.SanitizeColumns[2].Sanitizers[0]; s.Type != "casing" || string(s.Spec) != `"toUpper"` {
		t.Fatalf("sanitizer = %s %s", s.Type, s.Spec)
	}

	wantTypes := []value.Type{value.Char, value.String, value.Int8, value.DateTime}
	for i, tc := range c.TypeColumns {
		if tc.TargetType != wantTypes[i] {
			t.Fatalf("typeColumns[%d] = %s, want %s", i, tc.TargetType, wantTypes[i])
		}
	}
	if c.TypeColumns[3].SrcPattern != "%FT%T" || c.TypeColumns[0].Header != "Header-1" {
		t.Fatalf("typeColumns = %+v", c.TypeColumns)
	}

	if c.Sink.Kind != "sqlite" || c.Sink.Options.String("table", "") != "t" {
		t.Fatalf("sink = %+v", c.Sink)
	}
	if c.Runtime != (Runtime{BatchSize: 500, Workers: 2, MaxErrors: 10, Dedupe: true}) {
		t.Fatalf("runtime = %+v", c.Runtime)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		js   string
	}{
		{"unknown field", `{"parserOpts":{"separatorChar":","},"bogus":1}`},
		{"two char separator", `{"parserOpts":{"separatorChar":",,"}}`},
		{"empty enclosure", `{"parserOpts":{"separatorChar":",","enclosureChar":""}}`},
		{"unknown target type", `{"parserOpts":{"separatorChar":","},"typeColumns":[{"targetType":"Money"}]}`},
		{"not json", `{`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Load(strings.NewReader(tt.js)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad_MinimalDefaults(t *testing.T) {
	t.Parallel()

	c, err := Load(strings.NewReader(`{"parserOpts":{"separatorChar":";"}}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ParserOpts.EnclosureChar != nil || c.ParserOpts.Lines != nil {
		t.Fatalf("optional blocks must stay nil: %+v", c.ParserOpts)
	}
	if c.Sink.Options == nil {
		t.Fatalf("sink options must be a non-nil map")
	}
}

func TestChar_MarshalJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Char('ä'))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"ä"` {
		t.Fatalf("got %s", b)
	}
}

// -----------------------------------------------------------------------------
// Options helper tests
// -----------------------------------------------------------------------------

func TestOptions_String_Bool_Int_Defaults(t *testing.T) {
	t.Parallel()

	o := Options{
		"s": "hello",
		"b": true,
		"i": float64(42), // encoding/json decodes numbers as float64
	}

	if got := o.String("s", "def"); got != "hello" {
		t.Fatalf("String(s) = %q, want hello", got)
	}
	if got := o.String("missing", "def"); got != "def" {
		t.Fatalf("String(missing) = %q, want def", got)
	}
	if got := o.String("b", "def"); got != "def" {
		t.Fatalf("String(b) = %q, want def for non-string", got)
	}
	if got := o.Bool("b", false); got != true {
		t.Fatalf("Bool(b) = %v, want true", got)
	}
	if got := o.Bool("missing", true); got != true {
		t.Fatalf("Bool(missing) = %v, want true", got)
	}
	if got := o.Int("i", 0); got != 42 {
		t.Fatalf("Int(i) = %d, want 42", got)
	}
	if got := o.Int("missing", 7); got != 7 {
		t.Fatalf("Int(missing) = %d, want 7", got)
	}
}

func TestOptions_StringSlice(t *testing.T) {
	t.Parallel()

	o := Options{
		"s1": []any{"alpha", "beta", 3}, // ints ignored
		"s2": []string{"gamma"},
		"x":  "not a slice",
	}
	if got := o.StringSlice("s1"); !reflect.DeepEqual(got, []string{"alpha", "beta"}) {
		t.Fatalf("StringSlice(s1) = %v", got)
	}
	if got := o.StringSlice("s2"); !reflect.DeepEqual(got, []string{"gamma"}) {
		t.Fatalf("StringSlice(s2) = %v", got)
	}
	if got := o.StringSlice("x"); got != nil {
		t.Fatalf("StringSlice(x) = %v, want nil", got)
	}
}

func TestOptions_UnmarshalJSON_NullYieldsEmptyMap(t *testing.T) {
	t.Parallel()

	var s Sink
	if err := json.Unmarshal([]byte(`{"kind":"sqlite","options":null}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Options == nil || len(s.Options) != 0 {
		t.Fatalf("Options = %#v, want empty non-nil map", s.Options)
	}
}
