package file

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadList_Basic(t *testing.T) {
	t.Parallel()

	content := `
# inputs for the nightly run
data/2024-01.csv
   # indented comment
data/2024-02.csv.gz

   data/2024-03.csv.zst
`
	path := writeTempFile(t, "list.txt", content)

	got, err := ReadList(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadList error: %v", err)
	}
	want := []string{"data/2024-01.csv", "data/2024-02.csv.gz", "data/2024-03.csv.zst"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadList(%q) = %#v, want %#v", path, got, want)
	}
}

func TestReadList_Gzipped(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "list.txt.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte("a.csv\n#x\nb.csv\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	got, err := ReadList(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadList error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a.csv", "b.csv"}) {
		t.Fatalf("got %#v", got)
	}
}

func TestReadList_EmptyFile(t *testing.T) {
	t.Parallel()

	got, err := ReadList(context.Background(), writeTempFile(t, "list.txt", ""))
	if err != nil {
		t.Fatalf("ReadList error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}

func TestReadList_FileNotFound(t *testing.T) {
	t.Parallel()

	if _, err := ReadList(context.Background(), "does-not-exist-12345.txt"); err == nil {
		t.Fatalf("expected error for missing file, got nil")
	}
}
