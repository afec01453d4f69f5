// Package builtin contains the stock transitizers: trimming, case folding,
// literal removal and replacement, regex capture extraction and Unicode
// normalization.
package builtin

import (
	"strings"
	"unicode"
)

// TrimLeading removes leading Unicode white space.
type TrimLeading struct{}

func (TrimLeading) Apply(s string) (string, error) { return strings.TrimLeftFunc(s, isSpace), nil }
func (TrimLeading) String() string                 { return "TrimLeading" }

// TrimTrailing removes trailing Unicode white space.
type TrimTrailing struct{}

func (TrimTrailing) Apply(s string) (string, error) { return strings.TrimRightFunc(s, isSpace), nil }
func (TrimTrailing) String() string                 { return "TrimTrailing" }

// TrimAll removes leading and trailing Unicode white space.
type TrimAll struct{}

func (TrimAll) Apply(s string) (string, error) { return strings.TrimSpace(s), nil }
func (TrimAll) String() string                 { return "TrimAll" }

func isSpace(r rune) bool { return unicode.IsSpace(r) }
