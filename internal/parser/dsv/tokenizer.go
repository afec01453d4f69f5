package dsv

import (
	"fmt"
	"unicode/utf8"
)

// TokenizeErrorKind classifies a tokenizing failure.
type TokenizeErrorKind uint8

const (
	// IllegalEnclosureChar: enclosure character inside an unenclosed field.
	IllegalEnclosureChar TokenizeErrorKind = iota + 1
	// UnescapedEnclosureChar: enclosure character neither doubled nor
	// closing the field, or an enclosed field left open at end of line.
	UnescapedEnclosureChar
)

func (k TokenizeErrorKind) String() string {
	switch k {
	case IllegalEnclosureChar:
		return "illegal enclosure character in unenclosed field"
	case UnescapedEnclosureChar:
		return "unescaped enclosure character"
	}
	return "unknown tokenize error"
}

// TokenizeError reports the line and the 1-based number of the token being
// built when the line could not be split.
type TokenizeError struct {
	Kind  TokenizeErrorKind
	Line  int
	Token int
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("%s (line %d, token %d)", e.Kind, e.Line, e.Token)
}

type state uint8

const (
	stStart state = iota
	stScan
	stField
	stQuoted
	stQuoteInQuoted
)

// Tokenizer splits a single line into fields. Enclosure 0 disables quoting.
// A Tokenizer keeps a scratch buffer and must not be shared between
// goroutines.
type Tokenizer struct {
	Separator rune
	Enclosure rune

	buf  []byte
	hint int
}

// NewTokenizer returns a tokenizer for sep and encl.
func NewTokenizer(sep, encl rune) *Tokenizer {
	return &Tokenizer{Separator: sep, Enclosure: encl}
}

// Tokenize splits s, a line without its terminator. line only feeds error
// positions. An empty s yields no tokens.
func (t *Tokenizer) Tokenize(line int, s string) ([]string, error) {
	out := make([]string, 0, t.hint)
	cur := t.buf[:0]
	st := stStart

	for i := 0; i < len(s); {
		c, size := utf8.DecodeRuneInString(s[i:])
		raw := s[i : i+size]
		i += size

		isSep := c == t.Separator
		isEncl := t.Enclosure != 0 && c == t.Enclosure

		switch st {
		case stStart, stScan:
			switch {
			case isSep:
				out = append(out, "")
				st = stScan
			case isEncl:
				cur = cur[:0]
				st = stQuoted
			default:
				cur = append(cur[:0], raw...)
				st = stField
			}
		case stField:
			switch {
			case isSep:
				out = append(out, string(cur))
				st = stScan
			case isEncl:
				t.buf = cur
				return nil, &TokenizeError{Kind: IllegalEnclosureChar, Line: line, Token: len(out) + 1}
			default:
				cur = append(cur, raw...)
			}
		case stQuoted:
			if isEncl {
				st = stQuoteInQuoted
			} else {
				cur = append(cur, raw...)
			}
		case stQuoteInQuoted:
			switch {
			case isSep:
				out = append(out, string(cur))
				st = stScan
			case isEncl:
				cur = append(cur, raw...)
				st = stQuoted
			default:
				t.buf = cur
				return nil, &TokenizeError{Kind: UnescapedEnclosureChar, Line: line, Token: len(out) + 1}
			}
		}
	}

	switch st {
	case stScan:
		// trailing separator: one more empty field
		out = append(out, "")
	case stField, stQuoteInQuoted:
		out = append(out, string(cur))
	case stQuoted:
		t.buf = cur
		return nil, &TokenizeError{Kind: UnescapedEnclosureChar, Line: line, Token: len(out) + 1}
	}

	t.buf = cur
	if t.hint == 0 {
		t.hint = len(out)
	}
	return out, nil
}
