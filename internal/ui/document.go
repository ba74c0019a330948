package ui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/fold"
	"github.com/sdllogs/sdllogs/internal/syntax"
	"github.com/sdllogs/sdllogs/internal/trace"
)

// foldPlaceholder replaces folded fields on screen.
const foldPlaceholder = "…"

type docKind int

const (
	docLog docKind = iota
	docFiltered
	docTree
)

func (k docKind) String() string {
	switch k {
	case docFiltered:
		return "filter"
	case docTree:
		return "tree"
	default:
		return "log"
	}
}

type searchState struct {
	query   string
	re      *regexp.Regexp
	matches []int // line indices
	idx     int
}

// document is one view on the stack. Filtered views and call trees are
// documents of their own with independent folds and cursor.
type document struct {
	title   string
	kind    docKind
	buf     *buffer.Buffer
	folds   fold.State
	regions []buffer.Range

	report      *trace.Report // nil until unpaired calls are requested
	unpaired    map[int]bool  // line indices holding an unpaired Enter
	unpairedAt  []int
	unpairedIdx int

	search searchState
	cursor int
	top    int
	follow bool
}

func newDocument(title string, kind docKind, buf *buffer.Buffer) *document {
	if buf == nil {
		buf = buffer.New("")
	}
	return &document{title: title, kind: kind, buf: buf}
}

func (d *document) lineCount() int {
	return d.buf.LineCount()
}

// setBuffer swaps in new text while keeping folds, search and the unpaired
// report current. The cursor stays on its line index unless following.
func (d *document) setBuffer(buf *buffer.Buffer, set *syntax.Set) {
	d.buf = buf
	d.refreshFolds(set)
	if d.report != nil {
		_ = d.findUnpaired(set)
	}
	if d.search.re != nil {
		d.search.matches = d.matchLines(d.search.re)
		if d.search.idx >= len(d.search.matches) {
			d.search.idx = 0
		}
	}
	if d.follow {
		d.cursor = d.lastLine()
	}
	d.clampCursor()
}

func (d *document) refreshFolds(set *syntax.Set) {
	d.regions = fold.Regions(d.buf, set, d.folds)
}

func (d *document) toggleFold(c fold.Category, set *syntax.Set) bool {
	on := d.folds.Toggle(c)
	d.refreshFolds(set)
	return on
}

// findUnpaired runs the pairing scan and indexes the lines to highlight.
func (d *document) findUnpaired(set *syntax.Set) error {
	report, err := trace.FindUnpairedCalls(d.buf, set)
	if err != nil {
		return err
	}
	d.report = &report
	d.unpaired = make(map[int]bool, len(report.Unpaired))
	d.unpairedAt = d.unpairedAt[:0]
	for _, r := range report.Unpaired {
		idx := d.buf.LineIndex(r.Start)
		if !d.unpaired[idx] {
			d.unpaired[idx] = true
			d.unpairedAt = append(d.unpairedAt, idx)
		}
	}
	if d.unpairedIdx >= len(d.unpairedAt) {
		d.unpairedIdx = 0
	}
	return nil
}

// nextUnpaired moves the cursor to the next (delta > 0) or previous unpaired
// call after the cursor, wrapping around.
func (d *document) nextUnpaired(delta int) bool {
	idx, ok := nextAround(d.unpairedAt, d.cursor, delta)
	if !ok {
		return false
	}
	d.unpairedIdx = idx
	d.cursor = d.unpairedAt[idx]
	d.follow = false
	return true
}

func (d *document) setSearch(query string) error {
	if strings.TrimSpace(query) == "" {
		d.clearSearch()
		return nil
	}
	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	d.search = searchState{query: query, re: re, matches: d.matchLines(re)}
	if len(d.search.matches) > 0 {
		d.nextMatch(1)
	}
	return nil
}

func (d *document) clearSearch() {
	d.search = searchState{}
}

func (d *document) nextMatch(delta int) bool {
	idx, ok := nextAround(d.search.matches, d.cursor, delta)
	if !ok {
		return false
	}
	d.search.idx = idx
	d.cursor = d.search.matches[idx]
	d.follow = false
	return true
}

// matchLines returns the lines whose displayed text matches re.
func (d *document) matchLines(re *regexp.Regexp) []int {
	var out []int
	for i := 0; i < d.lineCount(); i++ {
		if re.MatchString(d.displayLine(i)) {
			out = append(out, i)
		}
	}
	return out
}

// displayLine returns line i with folded fields replaced.
func (d *document) displayLine(i int) string {
	r := d.buf.LineRange(i)
	text := d.buf.Text(r)
	if len(d.regions) == 0 {
		return text
	}
	return fold.RenderText(text, r.Start, d.lineRegions(r), foldPlaceholder)
}

// lineRegions narrows the fold regions to those touching r.
func (d *document) lineRegions(r buffer.Range) []buffer.Range {
	lo, hi := 0, len(d.regions)
	for lo < hi {
		mid := (lo + hi) / 2
		if d.regions[mid].End <= r.Start {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	end := lo
	for end < len(d.regions) && d.regions[end].Start < r.End {
		end++
	}
	return d.regions[lo:end]
}

func (d *document) cursorText() string {
	if d.lineCount() == 0 {
		return ""
	}
	return d.buf.Text(d.buf.LineRange(d.cursor))
}

func (d *document) lastLine() int {
	if n := d.lineCount(); n > 0 {
		return n - 1
	}
	return 0
}

func (d *document) moveCursor(delta int) {
	d.cursor += delta
	d.clampCursor()
	d.follow = d.cursor == d.lastLine() && d.follow
}

func (d *document) clampCursor() {
	if d.cursor > d.lastLine() {
		d.cursor = d.lastLine()
	}
	if d.cursor < 0 {
		d.cursor = 0
	}
}

// scrollTo keeps the cursor inside a window of height lines.
func (d *document) scrollTo(height int) {
	if height <= 0 {
		return
	}
	if d.cursor < d.top {
		d.top = d.cursor
	}
	if d.cursor >= d.top+height {
		d.top = d.cursor - height + 1
	}
	if maxTop := d.lineCount() - height; d.top > maxTop {
		d.top = maxTop
	}
	if d.top < 0 {
		d.top = 0
	}
}

// nextAround picks the entry of sorted lines after (delta > 0) or before
// from, wrapping at either end.
func nextAround(lines []int, from, delta int) (int, bool) {
	if len(lines) == 0 {
		return 0, false
	}
	if delta >= 0 {
		for i, l := range lines {
			if l > from {
				return i, true
			}
		}
		return 0, true
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] < from {
			return i, true
		}
	}
	return len(lines) - 1, true
}
