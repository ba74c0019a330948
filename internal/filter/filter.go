// Package filter extracts the lines of a buffer that match a pattern into a
// new buffer.
package filter

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/sdllogs/sdllogs/internal/buffer"
)

// ErrEmptyPattern is returned for a blank filter.
var ErrEmptyPattern = errors.New("empty filter pattern")

// Lines returns a buffer holding every line of buf that matches pattern, each
// line once and in order.
func Lines(buf *buffer.Buffer, pattern string) (*buffer.Buffer, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", pattern, err)
	}
	return Regexp(buf, re), nil
}

// Regexp is Lines with a compiled expression.
func Regexp(buf *buffer.Buffer, re *regexp.Regexp) *buffer.Buffer {
	if buf.Len() == 0 {
		return buffer.New("")
	}
	var out []string
	last := -1
	pos := 0
	for pos <= buf.Len() {
		m, ok := buf.Find(re, pos)
		if !ok {
			break
		}
		idx := buf.LineIndex(m.Start)
		if idx != last {
			out = append(out, buf.LineText(idx))
			last = idx
		}
		next := buf.FullLine(m.Start).End
		if next <= pos {
			break
		}
		pos = next
	}
	return buffer.FromLines(out)
}

// Literal returns the lines of buf containing s. An empty s yields an empty
// buffer.
func Literal(buf *buffer.Buffer, s string) *buffer.Buffer {
	if s == "" {
		return buffer.New("")
	}
	return Regexp(buf, regexp.MustCompile(regexp.QuoteMeta(s)))
}
