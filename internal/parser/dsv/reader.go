package dsv

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/sischcode/patti-csv/internal/parser"
	"github.com/sischcode/patti-csv/internal/parser/lines"
)

const utf8BOM = "\uFEFF"

type rawLine struct {
	text string
	size int
}

// lineReader pulls physical lines, applies the admission filters and keeps
// the stats up to date. With skipEnd > 0 it holds skipEnd lines of lookahead
// so the trailing skipEnd lines of the stream are never admitted.
type lineReader struct {
	br          *bufio.Reader
	filter      lines.Filter
	skipEnd     int
	saveSkipped bool
	stats       *Stats

	queue   []rawLine
	started bool
	eof     bool
}

func newLineReader(r io.Reader, filter lines.Filter, skipEnd int, saveSkipped bool, stats *Stats) *lineReader {
	return &lineReader{
		br:          bufio.NewReaderSize(r, 64<<10),
		filter:      filter,
		skipEnd:     skipEnd,
		saveSkipped: saveSkipped,
		stats:       stats,
	}
}

// next returns the next admitted line, terminator included. It returns
// io.EOF at end of input or a *parser.ReadError.
func (lr *lineReader) next() (string, error) {
	for {
		l, err := lr.pull()
		if err != nil {
			return "", err
		}
		lr.stats.CurrentLine++
		lr.stats.BytesRead += int64(l.size)
		if lr.filter != nil && lr.filter.Skip(lr.stats.CurrentLine, l.text) {
			lr.skip(l.text)
			continue
		}
		lr.stats.LinesRead++
		return l.text, nil
	}
}

func (lr *lineReader) skip(text string) {
	sl := SkippedLine{Line: lr.stats.CurrentLine}
	if lr.saveSkipped {
		sl.Text = trimEOL(text)
	}
	lr.stats.Skipped = append(lr.stats.Skipped, sl)
}

func (lr *lineReader) pull() (rawLine, error) {
	if lr.skipEnd <= 0 {
		return lr.read()
	}
	for !lr.eof && len(lr.queue) <= lr.skipEnd {
		l, err := lr.read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rawLine{}, err
		}
		lr.queue = append(lr.queue, l)
	}
	if len(lr.queue) > lr.skipEnd {
		l := lr.queue[0]
		lr.queue = lr.queue[1:]
		return l, nil
	}
	// The remaining lines are the last skipEnd lines of the stream.
	for _, l := range lr.queue {
		lr.stats.CurrentLine++
		lr.stats.BytesRead += int64(l.size)
		lr.skip(l.text)
	}
	lr.queue = nil
	return rawLine{}, io.EOF
}

func (lr *lineReader) read() (rawLine, error) {
	if lr.eof {
		return rawLine{}, io.EOF
	}
	s, err := lr.br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		lr.eof = true
		return rawLine{}, &parser.ReadError{Line: lr.stats.CurrentLine + len(lr.queue) + 1, Err: err}
	}
	if err != nil {
		lr.eof = true
		if s == "" {
			return rawLine{}, io.EOF
		}
	}
	size := len(s)
	if !lr.started {
		lr.started = true
		s = strings.TrimPrefix(s, utf8BOM)
	}
	return rawLine{text: s, size: size}, nil
}

// trimEOL strips one trailing "\n" or "\r\n".
func trimEOL(s string) string {
	if strings.HasSuffix(s, "\n") {
		s = s[:len(s)-1]
		s = strings.TrimSuffix(s, "\r")
	}
	return s
}
