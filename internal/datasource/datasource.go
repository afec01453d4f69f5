// Package datasource abstracts where input bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source is a named, openable byte stream. Each Open starts a fresh read.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Reader wraps an already open stream, such as stdin, as a Source. It can
// be opened once.
type Reader struct {
	name string
	r    io.Reader
}

// FromReader returns a single-use Source reading r.
func FromReader(name string, r io.Reader) *Reader {
	return &Reader{name: name, r: r}
}

func (s *Reader) Name() string { return s.name }

// Open returns r. Closing the result does not close r.
func (s *Reader) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(s.r), nil
}
