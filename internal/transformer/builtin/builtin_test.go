package builtin

import (
	"errors"
	"testing"

	"github.com/sischcode/patti-csv/internal/transformer"
)

/*
TestTransitizers exercises every stock transitizer on a representative
token. Errors are covered separately.
*/
func TestTransitizers(t *testing.T) {
	t.Parallel()

	take, err := NewRegexTake(`(\d+\.\d+).*`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	nfc, err := NewNormalize("NFC")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	tests := []struct {
		name string
		tr   transformer.Transitizer
		in   string
		want string
	}{
		{"trim leading", TrimLeading{}, " \t foo ", "foo "},
		{"trim trailing", TrimTrailing{}, " foo \t ", " foo"},
		{"trim all", TrimAll{}, "  foo  ", "foo"},
		{"upper", ToUpper{}, "äbc", "ÄBC"},
		{"lower", ToLower{}, "ÄBC", "äbc"},
		{"eradicate one", Eradicate{Literal: "baz"}, "foobaz", "foo"},
		{"eradicate all", Eradicate{Literal: "baz"}, "bazfoobaz", "foo"},
		{"eradicate empty literal", Eradicate{}, "foo", "foo"},
		{"replace one", Replace{From: "baz", To: "bar"}, "foobaz", "foobar"},
		{"replace all", Replace{From: "baz", To: "bar"}, "bazfoobaz", "barfoobar"},
		{"regex take", take, "10.00 (CHF)", "10.00"},
		{"nfc", nfc, "e\u0301", "\u00e9"},
		{"strip diacritics", StripDiacritics{}, "Příliš žluťoučký", "Prilis zlutoucky"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.tr.Apply(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegexTake_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		msg     string
	}{
		{`(\d+\.\d+).*`, "No captures, but we need exactly one."},
		{``, "No capture group#1."},
		{`(x)?\d+`, "No capture group#1."},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()
			rt, err := NewRegexTake(tt.pattern)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			_, err = rt.Apply("1000 (CHF)")
			var se *transformer.SanitizeError
			if !errors.As(err, &se) {
				t.Fatalf("want *SanitizeError, got %v", err)
			}
			if se.Msg != tt.msg || se.Token != "1000 (CHF)" {
				t.Fatalf("got %+v", se)
			}
		})
	}

	if _, err := NewRegexTake(`(`); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestNewNormalize_Unknown(t *testing.T) {
	t.Parallel()

	if _, err := NewNormalize("nfx"); err == nil {
		t.Fatalf("expected error")
	}
}
