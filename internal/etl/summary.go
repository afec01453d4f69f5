package etl

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// SourceSummary are the counters of one source.
type SourceSummary struct {
	Name       string
	Rows       int64 // data rows handed to the sink
	Written    int64 // rows the sink reported as persisted
	Skipped    int64 // lines dropped by admission filters
	RowErrors  int64
	Duplicates int64
	Bytes      int64
	Elapsed    time.Duration
	Err        error
}

// Summary aggregates a whole run.
type Summary struct {
	Sources    []SourceSummary
	Rows       int64
	Written    int64
	Skipped    int64
	RowErrors  int64
	Duplicates int64
	Bytes      int64
	Elapsed    time.Duration
}

func aggregate(sums []SourceSummary, elapsed time.Duration) Summary {
	out := Summary{Sources: sums, Elapsed: elapsed}
	for _, s := range sums {
		out.Rows += s.Rows
		out.Written += s.Written
		out.Skipped += s.Skipped
		out.RowErrors += s.RowErrors
		out.Duplicates += s.Duplicates
		out.Bytes += s.Bytes
	}
	return out
}

// BytesHuman renders the consumed input size, e.g. "1.2 MB".
func (s Summary) BytesHuman() string {
	if s.Bytes <= 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(s.Bytes))
}

// String renders a multi-line report: one line per source, then totals.
func (s Summary) String() string {
	var b strings.Builder
	for _, src := range s.Sources {
		status := "ok"
		if src.Err != nil {
			status = "FAILED: " + src.Err.Error()
		}
		fmt.Fprintf(&b, "%-30s %12s rows %12s written %8s errors %10s  %s\n",
			src.Name,
			humanize.Comma(src.Rows),
			humanize.Comma(src.Written),
			humanize.Comma(src.RowErrors),
			humanize.Bytes(uint64(max(src.Bytes, 0))),
			status)
	}
	fmt.Fprintf(&b, "total: %s rows, %s written, %s skipped lines, %s row errors, %s duplicates, %s read in %s\n",
		humanize.Comma(s.Rows),
		humanize.Comma(s.Written),
		humanize.Comma(s.Skipped),
		humanize.Comma(s.RowErrors),
		humanize.Comma(s.Duplicates),
		s.BytesHuman(),
		s.Elapsed.Truncate(time.Millisecond))
	return b.String()
}
