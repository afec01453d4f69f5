package builtin

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize rewrites the token into a Unicode normalization form.
type Normalize struct {
	Form norm.Form
}

// NewNormalize maps "nfc", "nfd", "nfkc" or "nfkd" (any case) to a
// Normalize.
func NewNormalize(form string) (Normalize, error) {
	switch strings.ToLower(form) {
	case "nfc":
		return Normalize{Form: norm.NFC}, nil
	case "nfd":
		return Normalize{Form: norm.NFD}, nil
	case "nfkc":
		return Normalize{Form: norm.NFKC}, nil
	case "nfkd":
		return Normalize{Form: norm.NFKD}, nil
	}
	return Normalize{}, fmt.Errorf("unknown normalization form %q", form)
}

func (n Normalize) Apply(s string) (string, error) { return n.Form.String(s), nil }

func (n Normalize) String() string {
	names := map[norm.Form]string{norm.NFC: "NFC", norm.NFD: "NFD", norm.NFKC: "NFKC", norm.NFKD: "NFKD"}
	return "Normalize(" + names[n.Form] + ")"
}

// StripDiacritics removes combining marks: "Příliš" becomes "Prilis".
type StripDiacritics struct{}

func (StripDiacritics) Apply(s string) (string, error) {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return "", fmt.Errorf("strip diacritics: %w", err)
	}
	return out, nil
}

func (StripDiacritics) String() string { return "StripDiacritics" }
