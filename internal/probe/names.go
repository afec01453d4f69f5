package probe

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sischcode/patti-csv/internal/transformer/builtin"
)

// maxNameLen is PostgreSQL's identifier limit, the tightest of the sinks.
const maxNameLen = 63

// NormalizeName converts header text into a lowercase ASCII identifier
// suitable for SQL schemas:
//  1. lowercase, accents stripped
//  2. keep [a-z0-9_]; space, dash and dot become one underscore
//  3. names longer than 63 bytes keep their first 10 and last 53 bytes
//  4. fallback to "col" if empty
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if ascii, err := (builtin.StripDiacritics{}).Apply(s); err == nil {
		s = ascii
	}

	var b strings.Builder
	prevUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	if len(name) > maxNameLen {
		name = name[:10] + name[len(name)-(maxNameLen-10):]
	}
	return name
}

// uniqueNames normalizes headers and suffixes repeats with _2, _3, ...
func uniqueNames(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		name := NormalizeName(h)
		if n := seen[name]; n > 0 {
			candidate := fmt.Sprintf("%s_%d", name, n+1)
			for seen[candidate] > 0 {
				n++
				candidate = fmt.Sprintf("%s_%d", name, n+1)
			}
			seen[name] = n + 1
			name = candidate
		}
		seen[name]++
		out[i] = name
	}
	return out
}

// DecodeChar converts a user-supplied flag value into a single rune. It
// understands the escapes `\t` and "tab" for the tab character.
func DecodeChar(s string) (rune, error) {
	switch s {
	case `\t`, "tab", "TAB":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("expected a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
