package parser

import (
	"errors"
	"fmt"
)

// ErrColumnCount is wrapped by a RowError when a data line has a different
// number of tokens than the row layout established by the first line.
var ErrColumnCount = errors.New("column count differs from row layout")

// ConfigError reports a configuration that is inconsistent with itself or
// with the data (missing separator, typings/column mismatch, unresolvable
// header). It is never recoverable by calling Next again.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config error: " + e.Msg }

// Configf builds a *ConfigError from a format string.
func Configf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// ReadError wraps a failure of the underlying byte source.
type ReadError struct {
	Line int
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("error reading line %d: %v", e.Line, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// RowError attributes a sanitize, typing or shape failure to a line and,
// when known, a column. Column is -1 for whole-line failures.
type RowError struct {
	Line   int
	Column int
	Header string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column < 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	if e.Header != "" {
		return fmt.Sprintf("line %d, column %d (%s): %v", e.Line, e.Column, e.Header, e.Err)
	}
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
