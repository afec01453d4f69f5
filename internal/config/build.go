package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sischcode/patti-csv/internal/parser"
	"github.com/sischcode/patti-csv/internal/parser/dsv"
	"github.com/sischcode/patti-csv/internal/parser/lines"
	"github.com/sischcode/patti-csv/internal/schema"
	"github.com/sischcode/patti-csv/internal/transformer"
	"github.com/sischcode/patti-csv/internal/transformer/builtin"
)

// BuildParser converts c into parser options and validates them. Every
// failure is a *parser.ConfigError.
func BuildParser(c Config, log *zerolog.Logger) (*dsv.Parser, error) {
	opt, err := ParserOptions(c)
	if err != nil {
		return nil, err
	}
	opt.Logger = log
	return dsv.NewParser(opt)
}

// ParserOptions maps the declarative configuration onto dsv.Options.
func ParserOptions(c Config) (dsv.Options, error) {
	po := c.ParserOpts
	opt := dsv.Options{
		Separator:         rune(po.SeparatorChar),
		FirstLineIsHeader: po.FirstLineIsHeader,
		SaveSkippedLines:  po.SaveSkippedLines,
	}
	if po.EnclosureChar != nil {
		opt.Enclosure = rune(*po.EnclosureChar)
	}

	if po.Lines != nil {
		filters, err := buildFilters(*po.Lines)
		if err != nil {
			return dsv.Options{}, err
		}
		opt.Filters = filters
		opt.SkipFromEnd = po.Lines.SkipLinesFromEnd
	}

	for i, e := range c.SanitizeColumns {
		var chain transformer.Chain
		for j, s := range e.Sanitizers {
			ts, err := BuildSanitizer(s)
			if err != nil {
				return dsv.Options{}, parser.Configf("sanitizeColumns[%d].sanitizers[%d]: %v", i, j, err)
			}
			chain = append(chain, ts...)
		}
		if len(e.Idxs) == 0 {
			opt.Transitizers.AddGlobal(chain...)
			continue
		}
		for _, idx := range e.Idxs {
			if idx < 0 {
				return dsv.Options{}, parser.Configf("sanitizeColumns[%d]: negative column index %d", i, idx)
			}
			opt.Transitizers.AddColumn(idx, chain...)
		}
	}

	if len(c.TypeColumns) > 0 {
		opt.ColumnTypings = make([]schema.ColumnTyping, len(c.TypeColumns))
		for i, tc := range c.TypeColumns {
			opt.ColumnTypings[i] = schema.ColumnTyping{
				Header:    tc.Header,
				Type:      tc.TargetType,
				Pattern:   tc.SrcPattern,
				MapToNone: tc.MapToNone,
			}
		}
	}
	return opt, nil
}

func buildFilters(l Lines) ([]lines.Filter, error) {
	var fs []lines.Filter
	if l.SkipEmptyLines {
		fs = append(fs, lines.SkipEmpty{})
	}
	if l.SkipLinesFromStart > 0 {
		fs = append(fs, lines.SkipFromStart{N: l.SkipLinesFromStart})
	}
	for _, p := range l.SkipLinesByStartswith {
		fs = append(fs, lines.SkipStartingWith{Prefix: p})
	}
	for i, pattern := range l.SkipLinesByRegex {
		f, err := lines.NewSkipByRegex(pattern)
		if err != nil {
			return nil, parser.Configf("parserOpts.lines.skipLinesByRegex[%d]: %v", i, err)
		}
		fs = append(fs, f)
	}
	switch take := l.TakeLinesByStartswith; len(take) {
	case 0:
	case 1:
		fs = append(fs, lines.TakeStartingWith{Prefix: take[0]})
	default:
		// Several prefixes: keep a line when any of them matches.
		fs = append(fs, lines.FilterFunc(func(_ int, text string) bool {
			for _, p := range take {
				if strings.HasPrefix(text, p) {
					return false
				}
			}
			return true
		}))
	}
	return fs, nil
}

// BuildSanitizer turns one declaration into its transitizers. Eradicate and
// replace expand to one transitizer per listed entry.
func BuildSanitizer(s Sanitizer) ([]transformer.Transitizer, error) {
	switch s.Type {
	case "trim":
		var spec string
		if err := decodeSpec(s, &spec); err != nil {
			return nil, err
		}
		switch spec {
		case "all":
			return one(builtin.TrimAll{}), nil
		case "leading":
			return one(builtin.TrimLeading{}), nil
		case "trailing":
			return one(builtin.TrimTrailing{}), nil
		}
		return nil, fmt.Errorf("trim: unknown spec %q (want all, leading or trailing)", spec)

	case "casing":
		var spec string
		if err := decodeSpec(s, &spec); err != nil {
			return nil, err
		}
		switch spec {
		case "toLower":
			return one(builtin.ToLower{}), nil
		case "toUpper":
			return one(builtin.ToUpper{}), nil
		}
		return nil, fmt.Errorf("casing: unknown spec %q (want toLower or toUpper)", spec)

	case "eradicate":
		var spec []string
		if err := decodeSpec(s, &spec); err != nil {
			return nil, err
		}
		out := make([]transformer.Transitizer, 0, len(spec))
		for i, lit := range spec {
			if lit == "" {
				return nil, fmt.Errorf("eradicate: entry %d is empty", i)
			}
			out = append(out, builtin.Eradicate{Literal: lit})
		}
		return out, nil

	case "replace":
		var spec []ReplaceSpec
		if err := decodeSpec(s, &spec); err != nil {
			return nil, err
		}
		out := make([]transformer.Transitizer, 0, len(spec))
		for i, r := range spec {
			if r.From == "" {
				return nil, fmt.Errorf("replace: entry %d has an empty from", i)
			}
			out = append(out, builtin.Replace{From: r.From, To: r.To})
		}
		return out, nil

	case "regexTake":
		var spec string
		if err := decodeSpec(s, &spec); err != nil {
			return nil, err
		}
		rt, err := builtin.NewRegexTake(spec)
		if err != nil {
			return nil, err
		}
		return one(rt), nil

	case "normalize":
		var spec string
		if err := decodeSpec(s, &spec); err != nil {
			return nil, err
		}
		if spec == "stripDiacritics" {
			return one(builtin.StripDiacritics{}), nil
		}
		n, err := builtin.NewNormalize(spec)
		if err != nil {
			return nil, err
		}
		return one(n), nil
	}
	return nil, fmt.Errorf("unknown sanitizer type %q", s.Type)
}

func decodeSpec(s Sanitizer, v any) error {
	if len(s.Spec) == 0 {
		return fmt.Errorf("%s: spec is missing", s.Type)
	}
	if err := json.Unmarshal(s.Spec, v); err != nil {
		return fmt.Errorf("%s: invalid spec: %w", s.Type, err)
	}
	return nil
}

func one(t transformer.Transitizer) []transformer.Transitizer {
	return []transformer.Transitizer{t}
}
