package file

import (
	"bufio"
	"context"
	"strings"
)

// ReadList reads a list file of input paths, one per line. Blank lines and
// lines starting with '#' are ignored; relative entries are returned as
// written. The list itself may be compressed.
func ReadList(ctx context.Context, path string) ([]string, error) {
	rc, err := NewLocal(path).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out []string
	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
