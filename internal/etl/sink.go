package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sischcode/patti-csv/internal/metrics"
	"github.com/sischcode/patti-csv/internal/schema"
	"github.com/sischcode/patti-csv/internal/storage"
)

// JSONLines writes every row as one JSON object per line to w. Sinks of
// concurrently processed sources share w; each line is written atomically.
func JSONLines(w io.Writer) SinkFactory {
	mu := &sync.Mutex{}
	return func(context.Context, string) (Sink, error) {
		return &jsonSink{w: w, mu: mu}, nil
	}
}

type jsonSink struct {
	w  io.Writer
	mu *sync.Mutex
	n  int64
}

func (s *jsonSink) Write(_ context.Context, _ schema.Template, row schema.Row) error {
	b, err := json.Marshal(row)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	s.n++
	return nil
}

func (s *jsonSink) Close(context.Context) (int64, error) { return s.n, nil }

// TableTarget describes where StorageSink loads rows.
type TableTarget struct {
	Repo      storage.Repository
	Table     string
	BatchSize int
	// CreateTable issues CREATE TABLE IF NOT EXISTS derived from the row
	// layout before the first batch.
	CreateTable bool
	Job         string
	Logger      *zerolog.Logger
}

// StorageSink loads rows into t.Repo. Every source gets its own batching
// loader; the table is created at most once per run.
func StorageSink(t TableTarget) SinkFactory {
	if t.BatchSize <= 0 {
		t.BatchSize = 1000
	}
	shared := &tableState{TableTarget: t}
	return func(_ context.Context, source string) (Sink, error) {
		if t.Repo == nil {
			return nil, fmt.Errorf("storage sink for %s: no repository", source)
		}
		return &batchSink{t: shared}, nil
	}
}

type tableState struct {
	TableTarget
	mu      sync.Mutex
	created bool
}

func (t *tableState) ensure(ctx context.Context, tmpl schema.Template) error {
	if !t.CreateTable {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.created {
		return nil
	}
	if err := storage.EnsureTable(ctx, t.Repo, t.Table, tmpl); err != nil {
		return err
	}
	t.created = true
	return nil
}

func (t *tableState) copyFn(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	n, err := t.Repo.CopyFrom(ctx, columns, rows)
	if err == nil {
		metrics.RecordBatches(t.Job, 1)
	}
	return n, err
}

type loadResult struct {
	n   int64
	err error
}

type batchSink struct {
	t    *tableState
	in   chan []any
	done chan loadResult
	res  *loadResult
}

func (s *batchSink) Write(ctx context.Context, tmpl schema.Template, row schema.Row) error {
	if s.in == nil {
		if err := s.t.ensure(ctx, tmpl); err != nil {
			return err
		}
		s.in = make(chan []any, s.t.BatchSize)
		s.done = make(chan loadResult, 1)
		cols := tmpl.Names()
		go func() {
			n, err := storage.LoadBatches(ctx, s.t.Logger, cols, s.in, s.t.BatchSize, s.t.copyFn)
			s.done <- loadResult{n, err}
		}()
	}
	if s.res != nil {
		return s.res.err
	}
	select {
	case s.in <- row.Values():
		return nil
	case res := <-s.done:
		// The loader only stops early on error.
		s.res = &res
		return res.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *batchSink) Close(context.Context) (int64, error) {
	if s.in == nil {
		return 0, nil
	}
	close(s.in)
	if s.res == nil {
		res := <-s.done
		s.res = &res
	}
	return s.res.n, s.res.err
}
