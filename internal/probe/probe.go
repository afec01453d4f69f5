// Package probe samples the head of a delimited file, infers a type and a
// source pattern per column and renders a pipeline configuration that the
// parse and load commands accept as is.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/sischcode/patti-csv/internal/config"
	"github.com/sischcode/patti-csv/internal/datasource"
	"github.com/sischcode/patti-csv/internal/parser"
	"github.com/sischcode/patti-csv/internal/parser/dsv"
	"github.com/sischcode/patti-csv/internal/parser/lines"
	"github.com/sischcode/patti-csv/internal/value"
)

const (
	defaultMaxBytes = 1 << 20
	defaultMaxRows  = 1000
)

// Options control sampling and the generated configuration.
type Options struct {
	// Separator defaults to ','.
	Separator rune
	// Enclosure is the quote character; 0 disables quoting.
	Enclosure rune
	// MaxBytes to sample from the start of the (decompressed) input.
	MaxBytes int
	// MaxRows bounds the data rows used for inference.
	MaxRows int
	// DatePreference breaks ties between ambiguous date patterns.
	DatePreference DatePreference
	// Name is used for the table; defaults to the source file name.
	Name string
	// SinkKind, when set, adds a sink block for that backend.
	SinkKind string
	Logger   *zerolog.Logger
}

// Column is the inference result for one column.
type Column struct {
	Index int
	// Header is the text found in the header line.
	Header string
	// Name is Header normalized into a SQL identifier.
	Name    string
	Type    value.Type
	Pattern string
	// Empty counts samples without a value.
	Empty int
}

// Result describes a sampled input.
type Result struct {
	Source  string
	Columns []Column
	// Rows is the number of sampled data rows; Rejected rows had the wrong
	// shape and were left out.
	Rows     int
	Rejected int
	// Trim reports that some values carry surrounding whitespace; the
	// generated config then trims all columns.
	Trim bool
	// Truncated reports that MaxBytes cut the input.
	Truncated bool
	Bytes     int
}

// Probe samples src and infers its columns.
func Probe(ctx context.Context, src datasource.Source, opt Options) (Result, error) {
	opt = withDefaults(opt)
	log := zerolog.Nop()
	if opt.Logger != nil {
		log = *opt.Logger
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return Result{}, err
	}
	defer rc.Close()

	sample, truncated, err := readSample(rc, opt.MaxBytes)
	if err != nil {
		return Result{}, fmt.Errorf("sample %s: %w", src.Name(), err)
	}
	log.Debug().
		Str("source", src.Name()).
		Str("bytes", humanize.Bytes(uint64(len(sample)))).
		Bool("truncated", truncated).
		Msg("Sample read")

	res, err := Sample(bytes.NewReader(sample), opt)
	if err != nil {
		return Result{}, fmt.Errorf("sample %s: %w", src.Name(), err)
	}
	res.Source = src.Name()
	res.Truncated = truncated
	res.Bytes = len(sample)

	for _, c := range res.Columns {
		log.Debug().
			Int("index", c.Index).
			Str("name", c.Name).
			Str("type", c.Type.String()).
			Str("pattern", c.Pattern).
			Int("empty", c.Empty).
			Msg("Column inferred")
	}
	return res, nil
}

// Sample parses the header and up to opt.MaxRows data rows from r and
// infers every column. Rows with the wrong column count or broken quoting
// are counted as rejected.
func Sample(r io.Reader, opt Options) (Result, error) {
	opt = withDefaults(opt)
	p, err := dsv.NewParser(dsv.Options{
		Separator:         opt.Separator,
		Enclosure:         opt.Enclosure,
		FirstLineIsHeader: true,
		Filters:           []lines.Filter{lines.SkipEmpty{}},
		Logger:            opt.Logger,
	})
	if err != nil {
		return Result{}, err
	}

	var (
		res     Result
		headers []string
		cols    [][]string
	)
	it := p.Iter(r)
	for headers == nil || res.Rows < opt.MaxRows {
		row, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var ce *parser.ConfigError
			var re *parser.ReadError
			if errors.As(err, &ce) || errors.As(err, &re) {
				return Result{}, err
			}
			res.Rejected++
			continue
		}
		if headers == nil {
			headers = row.Strings()
			cols = make([][]string, len(headers))
			continue
		}
		for i, s := range row.Strings() {
			if t := strings.TrimSpace(s); t != s {
				res.Trim = true
				s = t
			}
			cols[i] = append(cols[i], s)
		}
		res.Rows++
	}
	if headers == nil {
		return Result{}, errors.New("no header line found")
	}

	names := uniqueNames(headers)
	res.Columns = make([]Column, len(headers))
	for i, h := range headers {
		t, pattern := InferColumn(cols[i], opt.DatePreference)
		res.Columns[i] = Column{
			Index:   i,
			Header:  h,
			Name:    names[i],
			Type:    t,
			Pattern: pattern,
			Empty:   len(cols[i]) - len(nonEmpty(cols[i])),
		}
	}
	return res, nil
}

// Config renders the result as a pipeline configuration. Column names are
// replaced by their normalized form through the typings' header.
func (r Result) Config(opt Options) config.Config {
	opt = withDefaults(opt)
	c := config.Config{
		Comment: fmt.Sprintf("generated by pattidsv probe from %s (%d rows sampled)", r.Source, r.Rows),
		ParserOpts: config.ParserOpts{
			SeparatorChar:     config.Char(opt.Separator),
			FirstLineIsHeader: true,
			Lines:             &config.Lines{SkipEmptyLines: true},
		},
		Sink: config.Sink{Options: config.Options{}},
	}
	if opt.Enclosure != 0 {
		enc := config.Char(opt.Enclosure)
		c.ParserOpts.EnclosureChar = &enc
	}
	if r.Trim {
		c.SanitizeColumns = []config.SanitizeColumnsEntry{{
			Sanitizers: []config.Sanitizer{{Type: "trim", Spec: json.RawMessage(`"all"`)}},
		}}
	}
	for _, col := range r.Columns {
		tc := config.TypeColumnsEntry{
			Header:     col.Name,
			TargetType: col.Type,
			SrcPattern: col.Pattern,
		}
		if col.Header != col.Name {
			tc.Comment = col.Header
		}
		c.TypeColumns = append(c.TypeColumns, tc)
	}
	if opt.SinkKind != "" {
		c.Sink = config.Sink{
			Kind: opt.SinkKind,
			Options: config.Options{
				"dsn":               "",
				"table":             r.tableName(opt),
				"auto_create_table": true,
			},
		}
		c.Runtime = config.Runtime{BatchSize: 1000, Workers: 1}
	}
	return c
}

// JSON renders Config as indented JSON with a trailing newline.
func (r Result) JSON(opt Options) ([]byte, error) {
	b, err := json.MarshalIndent(r.Config(opt), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func (r Result) tableName(opt Options) string {
	name := opt.Name
	if name == "" {
		name = filepath.Base(r.Source)
		// Drop every extension: people.csv.gz -> people.
		if i := strings.IndexByte(name, '.'); i > 0 {
			name = name[:i]
		}
	}
	return NormalizeName(name)
}

func withDefaults(opt Options) Options {
	if opt.Separator == 0 {
		opt.Separator = ','
	}
	if opt.MaxBytes <= 0 {
		opt.MaxBytes = defaultMaxBytes
	}
	if opt.MaxRows <= 0 {
		opt.MaxRows = defaultMaxRows
	}
	if opt.DatePreference == "" {
		opt.DatePreference = PreferAuto
	}
	return opt
}

// readSample reads at most limit bytes. When the input is longer the partial
// last line is dropped so no value is inferred from a cut token.
func readSample(r io.Reader, limit int) ([]byte, bool, error) {
	buf, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, false, err
	}
	if len(buf) <= limit {
		return buf, false, nil
	}
	buf = buf[:limit]
	nl := bytes.LastIndexByte(buf, '\n')
	if nl < 0 {
		return nil, true, fmt.Errorf("no complete line within %s", humanize.Bytes(uint64(limit)))
	}
	return buf[:nl+1], true, nil
}
