package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sischcode/patti-csv/internal/value"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to users but
	// does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "parserOpts.separatorChar",
// "sanitizeColumns[1].sanitizers[0]"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateConfig performs static validation of c. It does not mutate c;
// callers decide whether warnings are fatal.
func ValidateConfig(c Config) []Issue {
	var issues []Issue
	issues = append(issues, validateParserOpts(c.ParserOpts)...)
	issues = append(issues, validateSanitizers(c.SanitizeColumns)...)
	issues = append(issues, validateTypeColumns(c.TypeColumns)...)
	issues = append(issues, validateSink(c.Sink)...)
	issues = append(issues, validateRuntime(c.Runtime)...)
	return issues
}

func validateParserOpts(p ParserOpts) []Issue {
	var issues []Issue

	sep := rune(p.SeparatorChar)
	switch {
	case sep == 0:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parserOpts.separatorChar",
			Message:  "separatorChar is mandatory",
		})
	case sep == '\n' || sep == '\r':
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parserOpts.separatorChar",
			Message:  "separatorChar must not be a line break",
		})
	}
	if p.EnclosureChar != nil {
		enc := rune(*p.EnclosureChar)
		switch {
		case enc == sep:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parserOpts.enclosureChar",
				Message:  fmt.Sprintf("enclosureChar equals separatorChar (%q)", enc),
			})
		case enc == '\n' || enc == '\r':
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parserOpts.enclosureChar",
				Message:  "enclosureChar must not be a line break",
			})
		}
	}

	if p.Lines == nil {
		return issues
	}
	l := p.Lines
	if l.SkipLinesFromStart < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parserOpts.lines.skipLinesFromStart",
			Message:  "skipLinesFromStart must not be negative",
		})
	}
	if l.SkipLinesFromEnd < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parserOpts.lines.skipLinesFromEnd",
			Message:  "skipLinesFromEnd must not be negative",
		})
	}
	for i, pattern := range l.SkipLinesByRegex {
		if _, err := regexp.Compile(pattern); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("parserOpts.lines.skipLinesByRegex[%d]", i),
				Message:  fmt.Sprintf("invalid regex: %v", err),
			})
		}
	}
	for i, prefix := range l.SkipLinesByStartswith {
		if prefix == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("parserOpts.lines.skipLinesByStartswith[%d]", i),
				Message:  "empty prefix skips every line",
			})
		}
	}
	if len(l.TakeLinesByStartswith) > 0 && p.FirstLineIsHeader {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parserOpts.lines.takeLinesByStartswith",
			Message:  "the header line is filtered like any other line; make sure it matches one of the prefixes",
		})
	}
	return issues
}

func validateSanitizers(entries []SanitizeColumnsEntry) []Issue {
	var issues []Issue
	for i, e := range entries {
		if len(e.Sanitizers) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("sanitizeColumns[%d].sanitizers", i),
				Message:  "entry has no sanitizers",
			})
		}
		for _, idx := range e.Idxs {
			if idx < 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("sanitizeColumns[%d].idxs", i),
					Message:  fmt.Sprintf("negative column index %d", idx),
				})
			}
		}
		for j, s := range e.Sanitizers {
			if _, err := BuildSanitizer(s); err != nil {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("sanitizeColumns[%d].sanitizers[%d]", i, j),
					Message:  err.Error(),
				})
			}
		}
	}
	return issues
}

func validateTypeColumns(cols []TypeColumnsEntry) []Issue {
	var issues []Issue
	seen := map[string]int{}
	for i, tc := range cols {
		if tc.SrcPattern != "" {
			if !tc.TargetType.IsTemporal() {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     fmt.Sprintf("typeColumns[%d].srcPattern", i),
					Message:  fmt.Sprintf("srcPattern is ignored for target type %s", tc.TargetType),
				})
			} else if err := value.CheckPattern(tc.TargetType, tc.SrcPattern); err != nil {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("typeColumns[%d].srcPattern", i),
					Message:  err.Error(),
				})
			}
		}
		if h := strings.TrimSpace(tc.Header); h != "" {
			if j, dup := seen[h]; dup {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     fmt.Sprintf("typeColumns[%d].header", i),
					Message:  fmt.Sprintf("header %q is also used by typeColumns[%d]", h, j),
				})
			} else {
				seen[h] = i
			}
		}
	}
	return issues
}

func validateSink(s Sink) []Issue {
	var issues []Issue

	// A missing sink is fine for parse/validate; load checks it again.
	if strings.TrimSpace(s.Kind) == "" {
		return nil
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "sink.kind",
			Message:  fmt.Sprintf("unknown sink kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	if strings.TrimSpace(s.Options.String("dsn", "")) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.options.dsn",
			Message:  "sink.options.dsn must not be empty",
		})
	}
	if strings.TrimSpace(s.Options.String("table", "")) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.options.table",
			Message:  "sink.options.table must not be empty",
		})
	}
	return issues
}

func validateRuntime(r Runtime) []Issue {
	var issues []Issue
	if r.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batchSize",
			Message:  "batchSize must not be negative",
		})
	}
	if r.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.workers",
			Message:  "workers must not be negative",
		})
	}
	if r.MaxErrors < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.maxErrors",
			Message:  "maxErrors must not be negative",
		})
	}
	return issues
}
