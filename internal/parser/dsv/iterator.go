package dsv

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/rs/zerolog"

	"github.com/sischcode/patti-csv/internal/parser"
	"github.com/sischcode/patti-csv/internal/schema"
)

var _ parser.RowReader = (*Iterator)(nil)

// Iterator is one parsing run. It is not safe for concurrent use.
//
// The first admitted line that tokenizes establishes the row layout: with
// FirstLineIsHeader it is returned as an all-String header row, otherwise it
// is also the first data row. Errors for a single line do not end the run;
// configuration and read errors are sticky.
type Iterator struct {
	p     *Parser
	lr    *lineReader
	tok   *Tokenizer
	stats Stats
	log   zerolog.Logger

	tmpl      schema.Template
	templated bool
	err       error
}

// Next returns the next row, or io.EOF once the input is exhausted.
func (it *Iterator) Next() (schema.Row, error) {
	if it.err != nil {
		return nil, it.err
	}

	text, err := it.lr.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			it.log.Debug().
				Int("lines", it.stats.CurrentLine).
				Int("tokenized", it.stats.LinesTokenized).
				Int("skipped", len(it.stats.Skipped)).
				Int64("bytes", it.stats.BytesRead).
				Msg("Input exhausted")
		}
		it.err = err
		return nil, err
	}
	line := it.stats.CurrentLine

	tokens, err := it.tok.Tokenize(line, trimEOL(text))
	if err != nil {
		return nil, err
	}
	it.stats.LinesTokenized++

	if !it.templated {
		if err := it.establish(line, tokens); err != nil {
			it.err = err
			return nil, err
		}
		if it.p.opt.FirstLineIsHeader {
			return it.tmpl.HeaderRow(), nil
		}
	}
	return it.row(line, tokens)
}

func (it *Iterator) establish(line int, tokens []string) error {
	typings := it.p.opt.ColumnTypings
	switch {
	case len(typings) == 0:
		typings = schema.StringTypings(len(tokens))
	case len(typings) != len(tokens):
		return parser.Configf(
			"number of column typings (%d) does not match the number of columns in line %d (%d)",
			len(typings), line, len(tokens))
	}

	if it.p.opt.FirstLineIsHeader {
		tmpl, err := schema.NewTemplateWithHeader(tokens, typings)
		if err != nil {
			return &parser.ConfigError{Msg: err.Error()}
		}
		it.tmpl = tmpl
	} else {
		it.tmpl = schema.NewTemplate(typings)
	}
	it.templated = true
	it.log.Debug().
		Int("line", line).
		Int("columns", len(it.tmpl)).
		Bool("header", it.p.opt.FirstLineIsHeader).
		Strs("names", it.tmpl.Names()).
		Msg("Row layout established")
	return nil
}

func (it *Iterator) row(line int, tokens []string) (schema.Row, error) {
	if len(tokens) != len(it.tmpl) {
		return nil, &parser.RowError{
			Line:   line,
			Column: -1,
			Err:    fmt.Errorf("%w: expected %d, got %d", parser.ErrColumnCount, len(it.tmpl), len(tokens)),
		}
	}
	sanitize := !it.p.opt.Transitizers.Empty()
	row := it.tmpl.NewRow()
	for i, tok := range tokens {
		if sanitize {
			s, err := it.p.opt.Transitizers.Apply(tok, line, i)
			if err != nil {
				return nil, err
			}
			tok = s
		}
		v, err := it.tmpl[i].Resolve(tok)
		if err != nil {
			return nil, &parser.RowError{Line: line, Column: i, Header: it.tmpl[i].Name, Err: err}
		}
		row[i].Value = v
	}
	return row, nil
}

// All yields every remaining row. It stops after io.EOF or after yielding a
// sticky error; other errors are yielded and iteration continues unless
// the consumer breaks.
func (it *Iterator) All() iter.Seq2[schema.Row, error] {
	return func(yield func(schema.Row, error) bool) {
		for {
			row, err := it.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(row, err) || it.err != nil {
				return
			}
		}
	}
}

// Stats returns a snapshot of the run counters.
func (it *Iterator) Stats() Stats { return it.stats.clone() }

// SkippedLines returns the lines dropped by the admission filters so far.
func (it *Iterator) SkippedLines() []SkippedLine { return it.stats.clone().Skipped }

// Template returns the row layout, or nil before the first line.
func (it *Iterator) Template() schema.Template { return it.tmpl }
