package transformer

import (
	"errors"
	"fmt"
	"strings"
)

// SanitizeError is a transitizer failure. Msg grows as the error travels
// outward; Line and Column are zero/-1 until the pipeline knows them.
type SanitizeError struct {
	Msg    string
	Line   int
	Column int
	Token  string
	Err    error
}

// Failf returns a *SanitizeError for token without position.
func Failf(token, format string, args ...any) *SanitizeError {
	return &SanitizeError{Msg: fmt.Sprintf(format, args...), Column: -1, Token: token}
}

func (e *SanitizeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if e.Line > 0 || e.Column >= 0 || e.Token != "" {
		var ctx []string
		if e.Line > 0 {
			ctx = append(ctx, fmt.Sprintf("line %d", e.Line))
		}
		if e.Column >= 0 {
			ctx = append(ctx, fmt.Sprintf("column %d", e.Column))
		}
		if e.Token != "" {
			ctx = append(ctx, fmt.Sprintf("token %q", e.Token))
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(ctx, ", "))
		b.WriteString("]")
	}
	return b.String()
}

func (e *SanitizeError) Unwrap() error { return e.Err }

// Extend returns a copy of e with msg appended and the position filled in.
// A column < 0 leaves the column unset.
func (e *SanitizeError) Extend(msg string, line, column int) *SanitizeError {
	out := *e
	out.Msg += msg
	out.Line = line
	out.Column = column
	return &out
}

func asSanitizeError(err error, token string) *SanitizeError {
	var se *SanitizeError
	if errors.As(err, &se) {
		return se
	}
	return &SanitizeError{Msg: err.Error(), Column: -1, Token: token, Err: err}
}
