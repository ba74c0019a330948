package buffer

import (
	"sort"
	"strings"
)

// Insertion places Text at Offset, where Offset refers to the unmodified buffer.
type Insertion struct {
	Offset int
	Text   string
	Depth  int // nesting level for call-tree insertions; zero otherwise
}

// Apply returns text with insertions applied left to right. Offsets are in
// original coordinates; a running delta accounts for text already inserted,
// so callers never mutate a buffer in place.
func Apply(text string, insertions []Insertion) string {
	if len(insertions) == 0 {
		return text
	}
	ordered := make([]Insertion, len(insertions))
	copy(ordered, insertions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Offset < ordered[j].Offset
	})

	var b strings.Builder
	extra := 0
	for _, ins := range ordered {
		extra += len(ins.Text)
	}
	b.Grow(len(text) + extra)

	last := 0
	for _, ins := range ordered {
		off := ins.Offset
		if off < last {
			off = last
		}
		if off > len(text) {
			off = len(text)
		}
		b.WriteString(text[last:off])
		b.WriteString(ins.Text)
		last = off
	}
	b.WriteString(text[last:])
	return b.String()
}

// Shifted returns the offset of each insertion in the edited text, i.e. the
// original offset plus the length of every insertion applied before it.
func Shifted(insertions []Insertion) []int {
	out := make([]int, len(insertions))
	delta := 0
	for i, ins := range insertions {
		out[i] = ins.Offset + delta
		delta += len(ins.Text)
	}
	return out
}
