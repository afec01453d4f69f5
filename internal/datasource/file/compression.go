package file

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression identifies a stream encoding.
type Compression int

const (
	None Compression = iota
	Gzip
	Bzip2
	Zstd
	XZ
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case Zstd:
		return "zstd"
	case XZ:
		return "xz"
	}
	return "none"
}

// DetectCompression maps a file extension to a Compression.
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return Gzip
	case ".bz2":
		return Bzip2
	case ".zst", ".zstd":
		return Zstd
	case ".xz":
		return XZ
	}
	return None
}

// Decompress wraps rc with a decoder for c. Closing the result closes the
// decoder and rc.
func Decompress(rc io.ReadCloser, c Compression) (io.ReadCloser, error) {
	switch c {
	case None:
		return rc, nil
	case Gzip:
		gz, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return &stacked{Reader: gz, closers: []func() error{gz.Close, rc.Close}}, nil
	case Bzip2:
		return &stacked{Reader: bzip2.NewReader(rc), closers: []func() error{rc.Close}}, nil
	case Zstd:
		dec, err := zstd.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		zr := dec.IOReadCloser()
		return &stacked{Reader: zr, closers: []func() error{zr.Close, rc.Close}}, nil
	case XZ:
		xr, err := xz.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		return &stacked{Reader: xr, closers: []func() error{rc.Close}}, nil
	}
	return nil, fmt.Errorf("unsupported compression %d", int(c))
}

// stacked closes every layer in order and reports the first error.
type stacked struct {
	io.Reader
	closers []func() error
}

func (s *stacked) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
