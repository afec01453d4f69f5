package storage

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sischcode/patti-csv/internal/ddl"
	"github.com/sischcode/patti-csv/internal/schema"
	"github.com/sischcode/patti-csv/internal/value"
)

type fakeRepo struct {
	d     ddl.Dialect
	execs []string
	err   error
}

func (f *fakeRepo) CopyFrom(_ context.Context, _ []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(_ context.Context, sql string) error {
	f.execs = append(f.execs, sql)
	return f.err
}

func (f *fakeRepo) Dialect() ddl.Dialect { return f.d }
func (f *fakeRepo) Close()               {}

func TestRegistry(t *testing.T) {
	t.Parallel()

	Register("fake-registry", func(_ context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{d: ddl.SQLite}, nil
	})
	repo, err := New(context.Background(), Config{Kind: "fake-registry"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if repo.Dialect() != ddl.SQLite {
		t.Fatalf("dialect = %v", repo.Dialect())
	}

	found := false
	for _, k := range ListKinds() {
		if k == "fake-registry" {
			found = true
		}
	}
	if !found {
		t.Fatalf("ListKinds = %v", ListKinds())
	}

	_, err = New(context.Background(), Config{Kind: "nope"})
	if err == nil || !strings.Contains(err.Error(), "unsupported storage.kind=nope") {
		t.Fatalf("err = %v", err)
	}
}

func TestEnsureTable(t *testing.T) {
	t.Parallel()

	tmpl := schema.Template{{Name: "id", Type: value.Int64}, {Name: "at", Type: value.Date}}
	f := &fakeRepo{d: ddl.Postgres}
	if err := EnsureTable(context.Background(), f, "public.t", tmpl); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS \"public\".\"t\" (\n  \"id\" BIGINT,\n  \"at\" DATE\n);"
	if len(f.execs) != 1 || f.execs[0] != want {
		t.Fatalf("execs = %q\nwant %q", f.execs, want)
	}

	boom := errors.New("boom")
	if err := EnsureTable(context.Background(), &fakeRepo{err: boom}, "t", tmpl); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if err := EnsureTable(context.Background(), f, "t", nil); err == nil {
		t.Fatalf("expected error for empty template")
	}
}

func TestDriverValues(t *testing.T) {
	t.Parallel()

	row := []any{uint64(1 << 63), uint64(5), "x", nil}
	got := DriverValues(row)
	want := []any{"9223372036854775808", uint64(5), "x", nil}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DriverValues = %#v", got)
	}
}
