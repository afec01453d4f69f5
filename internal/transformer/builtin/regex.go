package builtin

import (
	"fmt"
	"regexp"

	"github.com/sischcode/patti-csv/internal/transformer"
)

// RegexTake replaces the token with the text captured by group 1 of Re,
// e.g. `(\d+\.\d+).*` turns "10.00 (CHF)" into "10.00".
type RegexTake struct {
	Re *regexp.Regexp
}

// NewRegexTake compiles pattern.
func NewRegexTake(pattern string) (RegexTake, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return RegexTake{}, fmt.Errorf("regex-take %q: %w", pattern, err)
	}
	return RegexTake{Re: re}, nil
}

func (r RegexTake) Apply(s string) (string, error) {
	m := r.Re.FindStringSubmatchIndex(s)
	if m == nil {
		return "", transformer.Failf(s, "No captures, but we need exactly one.")
	}
	if len(m) < 4 || m[2] < 0 {
		return "", transformer.Failf(s, "No capture group#1.")
	}
	return s[m[2]:m[3]], nil
}

func (r RegexTake) String() string { return fmt.Sprintf("RegexTake { regex: %s }", r.Re) }
