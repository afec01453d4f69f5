// Package dsv parses delimiter-separated values line by line: a strict
// enclosure-aware tokenizer, line admission filters, a sanitize pipeline
// and per-column typing, pulled one row at a time through an Iterator.
package dsv

import (
	"io"
	"slices"

	"github.com/rs/zerolog"

	"github.com/sischcode/patti-csv/internal/parser"
	"github.com/sischcode/patti-csv/internal/parser/lines"
	"github.com/sischcode/patti-csv/internal/schema"
	"github.com/sischcode/patti-csv/internal/transformer"
	"github.com/sischcode/patti-csv/internal/value"
)

// Options enumerates everything a Parser can be configured with.
type Options struct {
	// Separator is mandatory.
	Separator rune
	// Enclosure is the quote character; 0 disables quoting.
	Enclosure rune

	FirstLineIsHeader bool
	// SaveSkippedLines keeps the text of filtered lines in Stats.Skipped.
	SaveSkippedLines bool

	// Filters are OR-ed: a line is skipped when any of them says so.
	Filters []lines.Filter
	// SkipFromEnd drops the last N physical lines of the stream.
	SkipFromEnd int

	Transitizers transformer.Map

	// ColumnTypings, when set, must match the column count of the first
	// line. Without it every column is an untyped String.
	ColumnTypings          []schema.ColumnTyping
	MandatoryColumnTypings bool

	Logger *zerolog.Logger
}

// CSV returns options for comma separated values quoted with '"'.
func CSV() Options {
	return Options{Separator: ',', Enclosure: '"'}
}

// TSV returns options for tab separated values without quoting.
func TSV() Options {
	return Options{Separator: '\t'}
}

// Parser is a validated, immutable configuration. It is safe for
// concurrent use; every Iter call starts an independent run.
type Parser struct {
	opt    Options
	filter lines.Chain
	log    zerolog.Logger
}

// NewParser validates opt and returns a *parser.ConfigError when it is
// inconsistent.
func NewParser(opt Options) (*Parser, error) {
	switch {
	case opt.Separator == 0:
		return nil, parser.Configf("separator character is mandatory")
	case opt.Separator == '\n' || opt.Separator == '\r':
		return nil, parser.Configf("separator must not be a line break")
	case opt.Enclosure == '\n' || opt.Enclosure == '\r':
		return nil, parser.Configf("enclosure must not be a line break")
	case opt.Enclosure != 0 && opt.Enclosure == opt.Separator:
		return nil, parser.Configf("separator and enclosure are both %q", opt.Separator)
	case opt.SkipFromEnd < 0:
		return nil, parser.Configf("skip-from-end must not be negative, got %d", opt.SkipFromEnd)
	case opt.MandatoryColumnTypings && len(opt.ColumnTypings) == 0:
		return nil, parser.Configf("column typings are mandatory, but none were given")
	}
	for i, ct := range opt.ColumnTypings {
		if err := value.CheckPattern(ct.Type, ct.Pattern); err != nil {
			return nil, parser.Configf("column typing #%d: %v", i, err)
		}
	}

	p := &Parser{opt: opt}
	p.opt.Filters = slices.Clone(opt.Filters)
	p.opt.ColumnTypings = schema.CloneTypings(opt.ColumnTypings)
	p.opt.Transitizers = opt.Transitizers.Clone()
	p.filter = lines.Chain(p.opt.Filters)
	if opt.Logger != nil {
		p.log = *opt.Logger
	} else {
		p.log = zerolog.Nop()
	}
	p.opt.Logger = nil
	return p, nil
}

// Options returns a copy of the parser configuration.
func (p *Parser) Options() Options {
	o := p.opt
	o.Filters = slices.Clone(p.opt.Filters)
	o.ColumnTypings = schema.CloneTypings(p.opt.ColumnTypings)
	o.Transitizers = p.opt.Transitizers.Clone()
	return o
}

// Iter starts a run over r. The iterator owns r for its lifetime; r is not
// closed.
func (p *Parser) Iter(r io.Reader) *Iterator {
	it := &Iterator{
		p:   p,
		tok: NewTokenizer(p.opt.Separator, p.opt.Enclosure),
		log: p.log,
	}
	var f lines.Filter
	if len(p.filter) > 0 {
		f = p.filter
	}
	it.lr = newLineReader(r, f, p.opt.SkipFromEnd, p.opt.SaveSkippedLines, &it.stats)
	return it
}
