// Package config defines the JSON configuration model of a parse run: how
// lines are admitted, how tokens are sanitized and typed, and where the
// resulting rows go.
//
// Example (trimmed):
//
//	{
//	  "parserOpts": {
//	    "separatorChar": ",", "enclosureChar": "\"", "firstLineIsHeader": true,
//	    "lines": { "skipLinesByStartswith": ["#"], "skipEmptyLines": true }
//	  },
//	  "sanitizeColumns": [
//	    { "sanitizers": [{ "type": "trim", "spec": "all" }] },
//	    { "idxs": [1], "sanitizers": [{ "type": "casing", "spec": "toUpper" }] }
//	  ],
//	  "typeColumns": [
//	    { "header": "id", "targetType": "Int32" },
//	    { "header": "name", "targetType": "String", "mapToNone": ["-"] }
//	  ],
//	  "sink": { "kind": "sqlite", "options": { "dsn": "file:out.db", "table": "t" } }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/sischcode/patti-csv/internal/value"
)

// Config is the top-level object decoded from a configuration file.
type Config struct {
	Comment         string                 `json:"comment,omitempty"`
	ParserOpts      ParserOpts             `json:"parserOpts"`
	SanitizeColumns []SanitizeColumnsEntry `json:"sanitizeColumns,omitempty"`
	TypeColumns     []TypeColumnsEntry     `json:"typeColumns,omitempty"`

	// Sink and Runtime are only consulted by the load command.
	Sink    Sink    `json:"sink"`
	Runtime Runtime `json:"runtime"`
}

// ParserOpts configures tokenizing and line admission.
type ParserOpts struct {
	Comment       string `json:"comment,omitempty"`
	SeparatorChar Char   `json:"separatorChar"`
	// EnclosureChar is optional; nil disables quoting.
	EnclosureChar     *Char  `json:"enclosureChar,omitempty"`
	Lines             *Lines `json:"lines,omitempty"`
	FirstLineIsHeader bool   `json:"firstLineIsHeader"`
	SaveSkippedLines  bool   `json:"saveSkippedLines"`
}

// Lines holds the line admission filters. They are OR-ed together.
type Lines struct {
	Comment               string   `json:"comment,omitempty"`
	SkipLinesFromStart    int      `json:"skipLinesFromStart,omitempty"`
	SkipLinesFromEnd      int      `json:"skipLinesFromEnd,omitempty"`
	SkipLinesByStartswith []string `json:"skipLinesByStartswith,omitempty"`
	TakeLinesByStartswith []string `json:"takeLinesByStartswith,omitempty"`
	SkipLinesByRegex      []string `json:"skipLinesByRegex,omitempty"`
	SkipEmptyLines        bool     `json:"skipEmptyLines,omitempty"`
}

// SanitizeColumnsEntry attaches sanitizers to the columns in Idxs, or to
// every column when Idxs is empty.
type SanitizeColumnsEntry struct {
	Comment    string      `json:"comment,omitempty"`
	Idxs       []int       `json:"idxs,omitempty"`
	Sanitizers []Sanitizer `json:"sanitizers"`
}

// Sanitizer is one tagged sanitizer declaration. The shape of Spec depends
// on Type:
//
//	trim       "all" | "leading" | "trailing"
//	casing     "toLower" | "toUpper"
//	eradicate  ["literal", ...]
//	replace    [{"from": "a", "to": "b"}, ...]
//	regexTake  "pattern with one capture group"
//	normalize  "nfc" | "nfd" | "nfkc" | "nfkd" | "stripDiacritics"
type Sanitizer struct {
	Type string          `json:"type"`
	Spec json.RawMessage `json:"spec,omitempty"`
}

// ReplaceSpec is one entry of a "replace" sanitizer.
type ReplaceSpec struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TypeColumnsEntry types one column, positionally.
type TypeColumnsEntry struct {
	Header     string     `json:"header,omitempty"`
	Comment    string     `json:"comment,omitempty"`
	TargetType value.Type `json:"targetType"`
	SrcPattern string     `json:"srcPattern,omitempty"`
	MapToNone  []string   `json:"mapToNone,omitempty"`
}

// Sink selects where typed rows are written.
type Sink struct {
	// Kind is a registered storage backend: postgres, mysql, mssql or sqlite.
	Kind string `json:"kind"`

	// Options is interpreted by the backend. Common keys:
	//   dsn (string), table (string), auto_create_table (bool)
	Options Options `json:"options"`
}

// Runtime controls batching and concurrency of a load run.
type Runtime struct {
	BatchSize int  `json:"batchSize"`
	Workers   int  `json:"workers"`
	MaxErrors int  `json:"maxErrors"`
	Dedupe    bool `json:"dedupe"`
}

// Char is a single character encoded as a one-character JSON string.
type Char rune

// UnmarshalJSON requires exactly one character.
func (c *Char) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if utf8.RuneCountInString(s) != 1 {
		return fmt.Errorf("expected a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	*c = Char(r)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Char) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(rune(c)))
}

// Load decodes a configuration from r. Unknown fields are rejected.
func Load(r io.Reader) (Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if c.Sink.Options == nil {
		c.Sink.Options = Options{}
	}
	return c, nil
}

// Options is a small helper to fetch typed values from arbitrary JSON maps.
// It performs only minimal type coercion and returns the provided default
// when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// StringSlice returns a []string for key when the value is an array of
// strings. Returns nil when the key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// UnmarshalJSON decodes a missing or null "options" object to a non-nil,
// empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
