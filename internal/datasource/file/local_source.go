// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local is a filesystem data source. Compressed files are decoded
// transparently, selected by file extension (see DetectCompression).
type Local struct {
	path string
	comp Compression
}

// NewLocal returns a new Local data source bound to the provided filesystem
// path. The returned value is safe for concurrent use; every Open reads the
// file from the start.
func NewLocal(path string) *Local {
	return &Local{path: path, comp: DetectCompression(path)}
}

// WithCompression overrides the extension-based detection.
func (l *Local) WithCompression(c Compression) *Local {
	cp := *l
	cp.comp = c
	return &cp
}

func (l *Local) Name() string { return l.path }

// Open opens the configured path for reading.
//
// Behavior:
//   - If the context is already canceled or its deadline exceeded at the time
//     of the call, Open returns the context error immediately without touching
//     the filesystem.
//   - Filesystem errors are wrapped with the path while still permitting
//     errors.Is checks (e.g., errors.Is(err, os.ErrNotExist)).
//   - Closing the returned reader closes the decoder and the file.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)

	rc, err := Decompress(f, l.comp)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return rc, nil
}
