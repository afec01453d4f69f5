package etl

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/sischcode/patti-csv/internal/schema"
)

// fingerprints remembers 128-bit xxh3 digests of rows seen in a run.
type fingerprints struct {
	mu   sync.Mutex
	seen map[xxh3.Uint128]struct{}
}

func newFingerprints() *fingerprints {
	return &fingerprints{seen: make(map[xxh3.Uint128]struct{})}
}

// seenBefore records row and reports whether an equal row was recorded
// earlier.
func (f *fingerprints) seenBefore(row schema.Row) bool {
	fp := Fingerprint(row)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seen[fp]; ok {
		return true
	}
	f.seen[fp] = struct{}{}
	return false
}

var hasherPool = sync.Pool{New: func() any { return xxh3.New() }}

// Fingerprint hashes the rendered cell values of row. Every cell is length
// prefixed so that neighbouring cells cannot shift into each other; an
// absent cell hashes differently from an empty string.
func Fingerprint(row schema.Row) xxh3.Uint128 {
	h := hasherPool.Get().(*xxh3.Hasher)
	defer hasherPool.Put(h)
	h.Reset()

	var n [8]byte
	for _, c := range row {
		if c.Value.Absent() {
			binary.LittleEndian.PutUint64(n[:], math.MaxUint64)
			_, _ = h.Write(n[:])
			continue
		}
		s := c.Value.String()
		binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
		_, _ = h.Write(n[:])
		_, _ = h.WriteString(s)
	}
	return h.Sum128()
}
