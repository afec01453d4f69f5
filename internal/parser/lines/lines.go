// Package lines implements line admission: predicates over the 1-based
// physical line number and the raw line text (including its terminator)
// that decide whether a line is dropped before tokenizing.
package lines

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter reports whether a physical line must be skipped.
type Filter interface {
	Skip(line int, text string) bool
}

// FilterFunc adapts a plain function to Filter.
type FilterFunc func(line int, text string) bool

func (f FilterFunc) Skip(line int, text string) bool { return f(line, text) }

// Chain skips a line when any of its filters does. An empty chain admits
// everything.
type Chain []Filter

func (c Chain) Skip(line int, text string) bool {
	for _, f := range c {
		if f.Skip(line, text) {
			return true
		}
	}
	return false
}

// SkipFromStart drops the first N lines.
type SkipFromStart struct{ N int }

func (s SkipFromStart) Skip(line int, _ string) bool { return line <= s.N }

func (s SkipFromStart) String() string { return fmt.Sprintf("SkipFromStart(%d)", s.N) }

// SkipStartingWith drops lines that begin with Prefix, e.g. "#" comments.
type SkipStartingWith struct{ Prefix string }

func (s SkipStartingWith) Skip(_ int, text string) bool {
	return strings.HasPrefix(text, s.Prefix)
}

func (s SkipStartingWith) String() string { return fmt.Sprintf("SkipStartingWith(%q)", s.Prefix) }

// TakeStartingWith drops every line that does not begin with Prefix.
type TakeStartingWith struct{ Prefix string }

func (s TakeStartingWith) Skip(_ int, text string) bool {
	return !strings.HasPrefix(text, s.Prefix)
}

func (s TakeStartingWith) String() string { return fmt.Sprintf("TakeStartingWith(%q)", s.Prefix) }

// SkipByRegex drops lines matching Re anywhere in the raw text.
type SkipByRegex struct{ Re *regexp.Regexp }

// NewSkipByRegex compiles pattern.
func NewSkipByRegex(pattern string) (SkipByRegex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return SkipByRegex{}, fmt.Errorf("skip-by-regex %q: %w", pattern, err)
	}
	return SkipByRegex{Re: re}, nil
}

func (s SkipByRegex) Skip(_ int, text string) bool { return s.Re.MatchString(text) }

func (s SkipByRegex) String() string { return fmt.Sprintf("SkipByRegex(%q)", s.Re.String()) }

// SkipEmpty drops lines that hold nothing but a line terminator.
type SkipEmpty struct{}

func (SkipEmpty) Skip(_ int, text string) bool { return text == "\n" || text == "\r\n" }

func (SkipEmpty) String() string { return "SkipEmpty" }
