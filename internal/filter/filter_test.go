package filter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sdllogs/sdllogs/internal/buffer"
)

func TestLines(t *testing.T) {
	buf := buffer.New("alpha 1\nbeta 2\nalpha 3 alpha\ngamma\n")

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"literal word", "alpha", []string{"alpha 1", "alpha 3 alpha"}},
		{"regex", `[0-9]$`, []string{"alpha 1", "beta 2"}},
		{"no match", "delta", []string{}},
		{"every line", ".", []string{"alpha 1", "beta 2", "alpha 3 alpha", "gamma"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lines(buf, tt.pattern)
			if err != nil {
				t.Fatalf("Lines returned error: %v", err)
			}
			if lines := got.Lines(); !reflect.DeepEqual(lines, tt.want) {
				t.Fatalf("Lines(%q) = %q, want %q", tt.pattern, lines, tt.want)
			}
		})
	}
}

func TestLines_Errors(t *testing.T) {
	buf := buffer.New("x\n")
	if _, err := Lines(buf, ""); !errors.Is(err, ErrEmptyPattern) {
		t.Fatalf("Lines(\"\") error = %v, want ErrEmptyPattern", err)
	}
	if _, err := Lines(buf, "(x"); err == nil {
		t.Fatalf("Lines with invalid regex returned nil error")
	}
}

func TestLiteral_QuotesMeta(t *testing.T) {
	buf := buffer.New("a.b(): Enter\naxb(): Enter\n")
	got := Literal(buf, "a.b(): ").Lines()
	if !reflect.DeepEqual(got, []string{"a.b(): Enter"}) {
		t.Fatalf("Literal = %q, want only the exact match", got)
	}
	if Literal(buf, "").Len() != 0 {
		t.Fatalf("Literal(\"\") returned text, want empty buffer")
	}
}

func TestRegexp_EmptyBuffer(t *testing.T) {
	got, err := Lines(buffer.New(""), "x*")
	if err != nil {
		t.Fatalf("Lines returned error: %v", err)
	}
	if got.Len() != 0 {
		t.Fatalf("Lines on empty buffer = %q, want empty", got.String())
	}
}
