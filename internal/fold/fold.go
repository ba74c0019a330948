// Package fold hides recurring fields of trace lines: timestamps, thread
// addresses, component tags and source path prefixes.
package fold

import (
	"sort"
	"strings"

	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/syntax"
)

// Category is a foldable field.
type Category int

const (
	DateTime Category = iota
	ThreadAddress
	Component
	ExtraPath

	numCategories
)

// Categories lists every category in display order.
var Categories = []Category{DateTime, ThreadAddress, Component, ExtraPath}

var patternOf = map[Category]string{
	DateTime:      syntax.DateTime,
	ThreadAddress: syntax.ID,
	Component:     syntax.Component,
	ExtraPath:     syntax.Junk,
}

var labelOf = map[Category]string{
	DateTime:      "date",
	ThreadAddress: "thread",
	Component:     "component",
	ExtraPath:     "path",
}

func (c Category) String() string {
	if s, ok := labelOf[c]; ok {
		return s
	}
	return "unknown"
}

// ByName returns the category with the given label.
func ByName(name string) (Category, bool) {
	for c, label := range labelOf {
		if label == name {
			return c, true
		}
	}
	return 0, false
}

// Pattern returns the syntax pattern name that locates the category.
func (c Category) Pattern() string {
	return patternOf[c]
}

// State records which categories are folded in one document.
type State struct {
	folded [numCategories]bool
}

// Toggle flips c and returns whether it is now folded.
func (s *State) Toggle(c Category) bool {
	if !valid(c) {
		return false
	}
	s.folded[c] = !s.folded[c]
	return s.folded[c]
}

// Set folds or unfolds c.
func (s *State) Set(c Category, folded bool) {
	if valid(c) {
		s.folded[c] = folded
	}
}

// Folded reports whether c is folded.
func (s State) Folded(c Category) bool {
	return valid(c) && s.folded[c]
}

// Active returns the folded categories in display order.
func (s State) Active() []Category {
	var out []Category
	for _, c := range Categories {
		if s.folded[c] {
			out = append(out, c)
		}
	}
	return out
}

// Summary is a short label such as "date,thread", or "" when nothing is folded.
func (s State) Summary() string {
	var parts []string
	for _, c := range s.Active() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ",")
}

func valid(c Category) bool {
	return c >= DateTime && c < numCategories
}

// Regions returns the ranges of buf to hide for the folded categories of
// state, sorted and merged. Categories whose pattern is absent are skipped.
func Regions(buf *buffer.Buffer, set *syntax.Set, state State) []buffer.Range {
	var ranges []buffer.Range
	for _, c := range state.Active() {
		ranges = append(ranges, buf.FindAll(set.Regexp(c.Pattern()))...)
	}
	return merge(ranges)
}

func merge(ranges []buffer.Range) []buffer.Range {
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].Start != ranges[j].Start {
			return ranges[i].Start < ranges[j].Start
		}
		return ranges[i].End < ranges[j].End
	})
	out := []buffer.Range{ranges[0]}
	for _, r := range ranges[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// Render returns the text of buf with every region replaced by placeholder.
// Regions must be sorted and non-overlapping, as Regions returns them.
func Render(buf *buffer.Buffer, regions []buffer.Range, placeholder string) string {
	return RenderText(buf.String(), 0, regions, placeholder)
}

// RenderText applies regions to a slice of text that starts at base in
// buffer coordinates. Regions outside the slice are ignored.
func RenderText(text string, base int, regions []buffer.Range, placeholder string) string {
	if len(regions) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, r := range regions {
		start, end := r.Start-base, r.End-base
		if end <= 0 || start >= len(text) {
			continue
		}
		if start < last {
			start = last
		}
		if end > len(text) {
			end = len(text)
		}
		if start >= end {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(placeholder)
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}
