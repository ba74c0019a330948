// Package buffer holds log text as an immutable, offset-addressed sequence of lines.
package buffer

import (
	"regexp"
	"sort"
	"strings"
)

// Range is a half-open byte range [Start, End) into a Buffer.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty reports whether the range covers no bytes.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Contains reports whether offset falls inside the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Buffer is read-only text with precomputed line starts. It is safe for
// concurrent readers.
type Buffer struct {
	text       string
	lineStarts []int
}

// New builds a Buffer over text.
func New(text string) *Buffer {
	starts := make([]int, 1, strings.Count(text, "\n")+1)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' && i+1 < len(text) {
			starts = append(starts, i+1)
		}
	}
	return &Buffer{text: text, lineStarts: starts}
}

// FromLines joins lines with newlines, terminating the last one.
func FromLines(lines []string) *Buffer {
	if len(lines) == 0 {
		return New("")
	}
	return New(strings.Join(lines, "\n") + "\n")
}

// String returns the whole text.
func (b *Buffer) String() string {
	return b.text
}

// Len returns the size of the text in bytes.
func (b *Buffer) Len() int {
	return len(b.text)
}

// LineCount returns the number of lines. An empty buffer has zero lines.
func (b *Buffer) LineCount() int {
	if len(b.text) == 0 {
		return 0
	}
	return len(b.lineStarts)
}

// Text returns the text covered by r, clamped to the buffer.
func (b *Buffer) Text(r Range) string {
	r = b.clamp(r)
	return b.text[r.Start:r.End]
}

// LineIndex returns the zero-based line containing offset.
func (b *Buffer) LineIndex(offset int) int {
	offset = b.clampOffset(offset)
	return sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > offset
	}) - 1
}

// LineRange returns the range of line index without its line break.
func (b *Buffer) LineRange(index int) Range {
	if index < 0 || index >= len(b.lineStarts) {
		return Range{Start: len(b.text), End: len(b.text)}
	}
	return b.Line(b.lineStarts[index])
}

// Line returns the range of the line containing offset, excluding the line break.
func (b *Buffer) Line(offset int) Range {
	full := b.FullLine(offset)
	end := full.End
	if end > full.Start && b.text[end-1] == '\n' {
		end--
	}
	if end > full.Start && b.text[end-1] == '\r' {
		end--
	}
	return Range{Start: full.Start, End: end}
}

// FullLine returns the range of the line containing offset, including its
// trailing line break when present.
func (b *Buffer) FullLine(offset int) Range {
	idx := b.LineIndex(offset)
	start := b.lineStarts[idx]
	end := len(b.text)
	if idx+1 < len(b.lineStarts) {
		end = b.lineStarts[idx+1]
	} else if nl := strings.IndexByte(b.text[start:], '\n'); nl >= 0 {
		end = start + nl + 1
	}
	return Range{Start: start, End: end}
}

// LineText returns the text of line index without its line break.
func (b *Buffer) LineText(index int) string {
	return b.Text(b.LineRange(index))
}

// Lines returns every line without line breaks.
func (b *Buffer) Lines() []string {
	lines := make([]string, 0, b.LineCount())
	for i := 0; i < b.LineCount(); i++ {
		lines = append(lines, b.LineText(i))
	}
	return lines
}

// Find returns the first match of re starting at or after from. The search
// runs from the start of the line holding from, so anchors and word
// boundaries see the real line context rather than a mid-line cut.
func (b *Buffer) Find(re *regexp.Regexp, from int) (Range, bool) {
	if re == nil || from < 0 || from > len(b.text) {
		return Range{}, false
	}
	base := b.FullLine(from).Start
	for n := 4; ; n *= 2 {
		locs := re.FindAllStringIndex(b.text[base:], n)
		for _, loc := range locs {
			start, end := base+loc[0], base+loc[1]
			if start >= from {
				return Range{Start: start, End: end}, true
			}
			if end > from {
				// A match straddling from hides any overlapping one.
				return b.findFrom(re, from)
			}
		}
		if len(locs) < n {
			return Range{}, false
		}
	}
}

func (b *Buffer) findFrom(re *regexp.Regexp, from int) (Range, bool) {
	loc := re.FindStringIndex(b.text[from:])
	if loc == nil {
		return Range{}, false
	}
	return Range{Start: from + loc[0], End: from + loc[1]}, true
}

// FindLiteral returns the first occurrence of s starting at or after from.
func (b *Buffer) FindLiteral(s string, from int) (Range, bool) {
	if s == "" || from < 0 || from > len(b.text) {
		return Range{}, false
	}
	idx := strings.Index(b.text[from:], s)
	if idx < 0 {
		return Range{}, false
	}
	return Range{Start: from + idx, End: from + idx + len(s)}, true
}

// FindAll returns every non-overlapping match of re, skipping empty matches.
func (b *Buffer) FindAll(re *regexp.Regexp) []Range {
	if re == nil {
		return nil
	}
	locs := re.FindAllStringIndex(b.text, -1)
	out := make([]Range, 0, len(locs))
	for _, loc := range locs {
		if loc[1] > loc[0] {
			out = append(out, Range{Start: loc[0], End: loc[1]})
		}
	}
	return out
}

func (b *Buffer) clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(b.text) {
		return len(b.text)
	}
	return offset
}

func (b *Buffer) clamp(r Range) Range {
	r.Start = b.clampOffset(r.Start)
	r.End = b.clampOffset(r.End)
	if r.End < r.Start {
		r.End = r.Start
	}
	return r
}
