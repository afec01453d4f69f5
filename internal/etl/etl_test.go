package etl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/sischcode/patti-csv/internal/datasource"
	"github.com/sischcode/patti-csv/internal/parser"
	"github.com/sischcode/patti-csv/internal/parser/dsv"
	"github.com/sischcode/patti-csv/internal/schema"
	"github.com/sischcode/patti-csv/internal/value"
)

// collectSink records rendered rows per source.
type collectSink struct {
	mu   sync.Mutex
	rows map[string][]string
}

func newCollect() *collectSink { return &collectSink{rows: map[string][]string{}} }

func (c *collectSink) factory() SinkFactory {
	return func(_ context.Context, source string) (Sink, error) {
		return &collectOne{c: c, source: source}, nil
	}
}

type collectOne struct {
	c      *collectSink
	source string
	n      int64
}

func (o *collectOne) Write(_ context.Context, _ schema.Template, row schema.Row) error {
	o.c.mu.Lock()
	defer o.c.mu.Unlock()
	o.c.rows[o.source] = append(o.c.rows[o.source], strings.Join(row.Strings(), "|"))
	o.n++
	return nil
}

func (o *collectOne) Close(context.Context) (int64, error) { return o.n, nil }

func typedParser(t *testing.T) *dsv.Parser {
	t.Helper()
	opt := dsv.CSV()
	opt.FirstLineIsHeader = true
	opt.ColumnTypings = []schema.ColumnTyping{
		{Type: value.String},
		{Type: value.Int32},
	}
	p, err := dsv.NewParser(opt)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	return p
}

func src(name, body string) datasource.Source {
	return datasource.FromReader(name, strings.NewReader(body))
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) Open(context.Context) (io.ReadCloser, error) {
	return nil, errors.New("no such thing")
}

/*
TestRunner_MultipleSources parses two sources concurrently and checks that
the header row is not forwarded and that the summary adds up.
*/
func TestRunner_MultipleSources(t *testing.T) {
	t.Parallel()

	r := NewRunner(typedParser(t), Options{Workers: 2})
	c := newCollect()
	sum, err := r.Run(context.Background(), []datasource.Source{
		src("a.csv", "name,n\nann,1\nbob,2\n"),
		src("b.csv", "name,n\ncy,3\n"),
	}, c.factory())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.rows["a.csv"]; len(got) != 2 || got[0] != "ann|1" || got[1] != "bob|2" {
		t.Fatalf("a.csv rows = %v", got)
	}
	if got := c.rows["b.csv"]; len(got) != 1 || got[0] != "cy|3" {
		t.Fatalf("b.csv rows = %v", got)
	}
	if sum.Rows != 3 || sum.Written != 3 || sum.RowErrors != 0 || len(sum.Sources) != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Bytes != int64(len("name,n\nann,1\nbob,2\n")+len("name,n\ncy,3\n")) {
		t.Fatalf("bytes = %d", sum.Bytes)
	}
	if !strings.Contains(sum.String(), "total: 3 rows, 3 written") {
		t.Fatalf("report = %q", sum.String())
	}
}

func TestRunner_ErrorBudget(t *testing.T) {
	t.Parallel()

	const body = "name,n\nann,1\nbob,two\ncy,3\n"
	tests := []struct {
		name      string
		maxErrors int
		wantErr   bool
		wantRows  int64
	}{
		{"strict", 0, true, 1},
		{"tolerant", 1, false, 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewRunner(typedParser(t), Options{MaxErrors: tt.maxErrors})
			sum, err := r.Run(context.Background(), []datasource.Source{src("in.csv", body)}, newCollect().factory())
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrTooManyErrors) {
				t.Fatalf("err = %v, want ErrTooManyErrors", err)
			}
			if sum.Rows != tt.wantRows || sum.RowErrors != 1 {
				t.Fatalf("rows=%d errors=%d", sum.Rows, sum.RowErrors)
			}
		})
	}
}

func TestRunner_Dedupe(t *testing.T) {
	t.Parallel()

	r := NewRunner(typedParser(t), Options{Dedupe: true})
	c := newCollect()
	sum, err := r.Run(context.Background(), []datasource.Source{
		src("a.csv", "name,n\nann,1\nann,1\nbob,2\n"),
		src("b.csv", "name,n\nbob,2\ncy,3\n"),
	}, c.factory())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Duplicates != 2 || sum.Rows != 3 {
		t.Fatalf("duplicates=%d rows=%d", sum.Duplicates, sum.Rows)
	}
	var all []string
	for _, rows := range c.rows {
		all = append(all, rows...)
	}
	sort.Strings(all)
	if strings.Join(all, ",") != "ann|1,bob|2,cy|3" {
		t.Fatalf("rows = %v", all)
	}
}

func TestRunner_FatalErrors(t *testing.T) {
	t.Parallel()

	t.Run("config error", func(t *testing.T) {
		t.Parallel()
		// Two typings, three columns.
		r := NewRunner(typedParser(t), Options{MaxErrors: 100})
		_, err := r.Run(context.Background(), []datasource.Source{src("x.csv", "a,b,c\n1,2,3\n")}, newCollect().factory())
		var ce *parser.ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("err = %v, want *parser.ConfigError", err)
		}
		if !strings.HasPrefix(err.Error(), "x.csv: ") {
			t.Fatalf("error must name the source: %v", err)
		}
	})

	t.Run("open error", func(t *testing.T) {
		t.Parallel()
		r := NewRunner(typedParser(t), Options{})
		sum, err := r.Run(context.Background(), []datasource.Source{failingSource{}}, newCollect().factory())
		if err == nil || !strings.Contains(err.Error(), "no such thing") {
			t.Fatalf("err = %v", err)
		}
		if sum.Sources[0].Err == nil {
			t.Fatalf("source summary must carry the error")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := NewRunner(typedParser(t), Options{})
		_, err := r.Run(ctx, []datasource.Source{src("a.csv", "name,n\nann,1\n")}, newCollect().factory())
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	})
}

func TestFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{parser.Configf("x"), true},
		{&parser.ReadError{Line: 1, Err: io.ErrUnexpectedEOF}, true},
		{context.Canceled, true},
		{&parser.RowError{Line: 2, Column: 0, Err: errors.New("bad")}, false},
		{errors.New("other"), false},
	}
	for _, tt := range tests {
		if got := Fatal(tt.err); got != tt.want {
			t.Fatalf("Fatal(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestJSONLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewRunner(typedParser(t), Options{})
	sum, err := r.Run(context.Background(), []datasource.Source{src("a.csv", "name,n\nann,1\nbob,\n")}, JSONLines(&buf))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := `{"name":"ann","n":1}` + "\n" + `{"name":"bob","n":null}` + "\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
	if sum.Written != 2 {
		t.Fatalf("written = %d", sum.Written)
	}
}

/*
TestJSONLines_NonFiniteFloats: NaN and Inf parse as Float64 and must not
break the JSON output of their source.
*/
func TestJSONLines_NonFiniteFloats(t *testing.T) {
	t.Parallel()

	opt := dsv.CSV()
	opt.FirstLineIsHeader = true
	opt.ColumnTypings = []schema.ColumnTyping{{Type: value.String}, {Type: value.Float64}}
	p, err := dsv.NewParser(opt)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}

	var buf bytes.Buffer
	sum, err := NewRunner(p, Options{}).Run(context.Background(),
		[]datasource.Source{src("f.csv", "name,x\na,NaN\nb,-Inf\nc,0.25\n")}, JSONLines(&buf))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := `{"name":"a","x":"NaN"}` + "\n" + `{"name":"b","x":"-Inf"}` + "\n" + `{"name":"c","x":0.25}` + "\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
	if sum.Written != 3 {
		t.Fatalf("written = %d", sum.Written)
	}
}
