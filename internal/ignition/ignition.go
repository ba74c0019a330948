// Package ignition marks the start of each ignition cycle in a log with a
// separator block.
package ignition

import (
	"path/filepath"
	"strings"

	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/syntax"
)

// Block returns the separator text inserted before an application start.
func Block(set *syntax.Set) string {
	border := set.Pattern(syntax.BorderString)
	return border + "\n" + set.Pattern(syntax.MsgString) + "\n" + border + "\n"
}

// Separators returns one insertion at the start of every line holding an
// application start mark, unless the line above already ends a separator.
func Separators(buf *buffer.Buffer, set *syntax.Set) ([]buffer.Insertion, error) {
	if err := set.Require(syntax.AppMark, syntax.MsgString, syntax.BorderString); err != nil {
		return nil, err
	}
	mark := set.Regexp(syntax.AppMark)
	border := set.Pattern(syntax.BorderString)
	text := Block(set)

	var out []buffer.Insertion
	lastLine := -1
	pos := 0
	for pos <= buf.Len() {
		m, ok := buf.Find(mark, pos)
		if !ok {
			break
		}
		line := buf.FullLine(m.Start)
		idx := buf.LineIndex(m.Start)
		if idx != lastLine && !separated(buf, line.Start, border) {
			out = append(out, buffer.Insertion{Offset: line.Start, Text: text})
		}
		lastLine = idx

		next := m.End
		if next <= pos {
			next = pos + 1
		}
		pos = next
	}
	return out, nil
}

func separated(buf *buffer.Buffer, lineStart int, border string) bool {
	if lineStart == 0 {
		return false
	}
	return strings.Contains(buf.Text(buf.Line(lineStart-1)), border)
}

// Apply returns the text of buf with separators inserted.
func Apply(buf *buffer.Buffer, set *syntax.Set) (*buffer.Buffer, error) {
	ins, err := Separators(buf, set)
	if err != nil {
		return nil, err
	}
	if len(ins) == 0 {
		return buf, nil
	}
	return buffer.New(buffer.Apply(buf.String(), ins)), nil
}

// IsLogFile reports whether name looks like a log file and so receives
// separators when opened.
func IsLogFile(name string) bool {
	return strings.Contains(filepath.Base(name), ".log")
}
