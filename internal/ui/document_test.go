package ui

import (
	"reflect"
	"testing"

	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/fold"
	"github.com/sdllogs/sdllogs/internal/syntax"
)

func TestNextAround(t *testing.T) {
	lines := []int{2, 5, 9}
	tests := []struct {
		from, delta int
		want        int
	}{
		{0, 1, 0},
		{2, 1, 1},
		{9, 1, 0}, // wraps
		{5, -1, 0},
		{2, -1, 2}, // wraps
		{7, -1, 1},
	}
	for _, tt := range tests {
		got, ok := nextAround(lines, tt.from, tt.delta)
		if !ok || got != tt.want {
			t.Fatalf("nextAround(%d, %d) = %d, %v; want %d", tt.from, tt.delta, got, ok, tt.want)
		}
	}
	if _, ok := nextAround(nil, 0, 1); ok {
		t.Fatalf("nextAround on empty list reported a match")
	}
}

func TestDocument_DisplayLineUsesOwnRegions(t *testing.T) {
	set := syntax.Default()
	d := newDocument("log", docLog, buffer.FromLines(sampleLines))
	d.toggleFold(fold.ThreadAddress, set)

	for i := range sampleLines {
		got := d.displayLine(i)
		want := fold.RenderText(sampleLines[i], 0, fold.Regions(buffer.New(sampleLines[i]), set, d.folds), foldPlaceholder)
		if got != want {
			t.Fatalf("displayLine(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestDocument_SetBufferRefreshesReport(t *testing.T) {
	set := syntax.Default()
	d := newDocument("log", docLog, buffer.FromLines(sampleLines[:1]))
	if err := d.findUnpaired(set); err != nil {
		t.Fatalf("findUnpaired: %v", err)
	}
	if !reflect.DeepEqual(d.unpairedAt, []int{0}) {
		t.Fatalf("unpaired = %v, want [0]", d.unpairedAt)
	}

	d.setBuffer(buffer.FromLines([]string{sampleLines[0], sampleLines[2]}), set)
	if len(d.unpairedAt) != 0 || len(d.unpaired) != 0 {
		t.Fatalf("unpaired after exit arrived = %v", d.unpairedAt)
	}
}

func TestDocument_CursorAndScroll(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = "line"
	}
	d := newDocument("log", docLog, buffer.FromLines(lines))

	d.moveCursor(-3)
	if d.cursor != 0 {
		t.Fatalf("cursor = %d, want clamp to 0", d.cursor)
	}
	d.moveCursor(30)
	d.scrollTo(10)
	if d.cursor != 30 || d.top != 21 {
		t.Fatalf("cursor=%d top=%d, want 30 and 21", d.cursor, d.top)
	}
	d.moveCursor(100)
	d.scrollTo(10)
	if d.cursor != 49 || d.top != 40 {
		t.Fatalf("cursor=%d top=%d, want 49 and 40", d.cursor, d.top)
	}
}

func TestDocument_SearchInvalidPattern(t *testing.T) {
	d := newDocument("log", docLog, buffer.FromLines(sampleLines))
	if err := d.setSearch("("); err == nil {
		t.Fatalf("setSearch accepted an invalid pattern")
	}
	if err := d.setSearch("  "); err != nil || d.search.re != nil {
		t.Fatalf("blank search should clear: err=%v re=%v", err, d.search.re)
	}
}
