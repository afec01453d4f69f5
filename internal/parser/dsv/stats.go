package dsv

import "slices"

// SkippedLine records a line dropped by the admission filters. Text is only
// kept when the parser saves skipped lines.
type SkippedLine struct {
	Line int
	Text string
}

// Stats are the running counters of one parsing run.
type Stats struct {
	// CurrentLine is the 1-based number of the last physical line read.
	CurrentLine int
	// LinesRead counts admitted (not skipped) lines.
	LinesRead int
	// LinesTokenized counts admitted lines that split without error.
	LinesTokenized int
	// BytesRead counts raw bytes consumed, terminators and BOM included.
	BytesRead int64
	Skipped   []SkippedLine
}

func (s Stats) clone() Stats {
	s.Skipped = slices.Clone(s.Skipped)
	return s
}
