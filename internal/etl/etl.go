// Package etl drives parsing runs over one or many input sources: it opens
// each source, iterates the rows the configured parser produces, applies the
// run policies (soft error budget, de-duplication) and hands data rows to a
// Sink. Sources are processed concurrently with a bounded worker count.
package etl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sischcode/patti-csv/internal/datasource"
	"github.com/sischcode/patti-csv/internal/metrics"
	"github.com/sischcode/patti-csv/internal/parser"
	"github.com/sischcode/patti-csv/internal/parser/dsv"
	"github.com/sischcode/patti-csv/internal/schema"
)

// ErrTooManyErrors is returned when a source produces more row errors than
// Options.MaxErrors allows.
var ErrTooManyErrors = errors.New("too many row errors")

// Options tune a Runner. The zero value processes one source at a time and
// aborts a source on its first row error.
type Options struct {
	// Job labels metrics; defaults to "pattidsv".
	Job string
	// Workers bounds how many sources are parsed concurrently (<= 0 means 1).
	Workers int
	// MaxErrors is the number of row errors tolerated per source. Errors
	// beyond it abort the source with ErrTooManyErrors.
	MaxErrors int
	// Dedupe drops rows whose cell values equal an earlier row of the run.
	Dedupe bool
	Logger *zerolog.Logger
}

// Sink receives the data rows of one source. Write is never called
// concurrently for the same Sink; Close is called exactly once.
type Sink interface {
	Write(ctx context.Context, tmpl schema.Template, row schema.Row) error
	// Close finishes the source and reports how many rows were persisted.
	Close(ctx context.Context) (int64, error)
}

// SinkFactory opens the Sink for the named source.
type SinkFactory func(ctx context.Context, source string) (Sink, error)

// Runner parses sources with a shared, immutable parser.
type Runner struct {
	parser *dsv.Parser
	opt    Options
	log    zerolog.Logger
	seen   *fingerprints
}

// NewRunner returns a Runner for p.
func NewRunner(p *dsv.Parser, opt Options) *Runner {
	if opt.Job == "" {
		opt.Job = "pattidsv"
	}
	if opt.Workers <= 0 {
		opt.Workers = 1
	}
	r := &Runner{parser: p, opt: opt, log: zerolog.Nop()}
	if opt.Logger != nil {
		r.log = *opt.Logger
	}
	if opt.Dedupe {
		r.seen = newFingerprints()
	}
	return r
}

// Run processes every source and returns the aggregated summary. The first
// failing source cancels the others; its error is returned together with
// whatever was summarized up to that point.
func (r *Runner) Run(ctx context.Context, sources []datasource.Source, newSink SinkFactory) (Summary, error) {
	start := time.Now()
	sums := make([]SourceSummary, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opt.Workers)
	for i, src := range sources {
		g.Go(func() error {
			sums[i] = r.runSource(gctx, src, newSink)
			if err := sums[i].Err; err != nil {
				return fmt.Errorf("%s: %w", src.Name(), err)
			}
			return nil
		})
	}
	err := g.Wait()

	sum := aggregate(sums, time.Since(start))
	r.log.Info().
		Int("sources", len(sources)).
		Int64("rows", sum.Rows).
		Int64("written", sum.Written).
		Int64("row_errors", sum.RowErrors).
		Str("read", sum.BytesHuman()).
		Dur("elapsed", sum.Elapsed).
		Msg("Run finished")
	return sum, err
}

func (r *Runner) runSource(ctx context.Context, src datasource.Source, newSink SinkFactory) (s SourceSummary) {
	s.Name = src.Name()
	start := time.Now()
	log := r.log.With().Str("source", s.Name).Logger()
	defer func() {
		s.Elapsed = time.Since(start)
		metrics.RecordStep(r.opt.Job, "parse", s.Err, s.Elapsed)
		metrics.RecordRow(r.opt.Job, metrics.KindRows, s.Rows)
		metrics.RecordRow(r.opt.Job, metrics.KindSkipped, s.Skipped)
		metrics.RecordRow(r.opt.Job, metrics.KindRowErrors, s.RowErrors)
		metrics.RecordRow(r.opt.Job, metrics.KindDuplicate, s.Duplicates)
		metrics.RecordRow(r.opt.Job, metrics.KindInserted, s.Written)
		metrics.RecordBytes(r.opt.Job, s.Bytes)
	}()

	rc, err := src.Open(ctx)
	if err != nil {
		s.Err = err
		return s
	}
	defer rc.Close()

	sink, err := newSink(ctx, s.Name)
	if err != nil {
		s.Err = fmt.Errorf("open sink: %w", err)
		return s
	}

	it := r.parser.Iter(rc)
	runErr := r.drain(ctx, it, sink, &s, log)

	st := it.Stats()
	s.Skipped = int64(len(st.Skipped))
	s.Bytes = st.BytesRead

	n, closeErr := sink.Close(ctx)
	s.Written = n
	if runErr == nil && closeErr != nil {
		runErr = fmt.Errorf("close sink: %w", closeErr)
	}
	s.Err = runErr

	ev := log.Debug()
	if runErr != nil {
		ev = log.Error().Err(runErr)
	}
	ev.Int64("rows", s.Rows).
		Int64("written", s.Written).
		Int64("skipped", s.Skipped).
		Int64("row_errors", s.RowErrors).
		Int64("duplicates", s.Duplicates).
		Msg("Source finished")
	return s
}

func (r *Runner) drain(ctx context.Context, it *dsv.Iterator, sink Sink, s *SourceSummary, log zerolog.Logger) error {
	header := r.parser.Options().FirstLineIsHeader
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := it.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if Fatal(err) {
				return err
			}
			s.RowErrors++
			log.Warn().Err(err).Msg("Row rejected")
			if s.RowErrors > int64(r.opt.MaxErrors) {
				return fmt.Errorf("%w (%d, last: %v)", ErrTooManyErrors, s.RowErrors, err)
			}
			continue
		}
		// The first row a header run yields is the header itself.
		if header {
			header = false
			continue
		}
		if r.seen != nil && r.seen.seenBefore(row) {
			s.Duplicates++
			continue
		}
		if err := sink.Write(ctx, it.Template(), row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
		s.Rows++
	}
}

// Fatal reports whether err ends a parsing run: configuration and read
// errors are sticky, everything else concerns a single line.
func Fatal(err error) bool {
	var ce *parser.ConfigError
	var re *parser.ReadError
	return errors.As(err, &ce) || errors.As(err, &re) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
