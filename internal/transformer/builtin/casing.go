package builtin

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToUpper folds to upper case without locale-specific rules.
type ToUpper struct{}

// Casers keep state, so one is built per call.
func (ToUpper) Apply(s string) (string, error) { return cases.Upper(language.Und).String(s), nil }
func (ToUpper) String() string                 { return "ToUppercase" }

// ToLower folds to lower case without locale-specific rules.
type ToLower struct{}

func (ToLower) Apply(s string) (string, error) { return cases.Lower(language.Und).String(s), nil }
func (ToLower) String() string                 { return "ToLowercase" }
