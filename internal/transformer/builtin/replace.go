package builtin

import (
	"fmt"
	"strings"
)

// Eradicate removes every occurrence of Literal.
type Eradicate struct {
	Literal string
}

func (e Eradicate) Apply(s string) (string, error) {
	if e.Literal == "" {
		return s, nil
	}
	return strings.ReplaceAll(s, e.Literal, ""), nil
}

func (e Eradicate) String() string { return fmt.Sprintf("Eradicate { eradicate: %q }", e.Literal) }

// Replace substitutes every occurrence of From with To.
type Replace struct {
	From string
	To   string
}

func (r Replace) Apply(s string) (string, error) {
	if r.From == "" {
		return s, nil
	}
	return strings.ReplaceAll(s, r.From, r.To), nil
}

func (r Replace) String() string { return fmt.Sprintf("ReplaceWith { from: %q, to: %q }", r.From, r.To) }
