package ignition

import (
	"strings"
	"testing"

	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/syntax"
)

func TestSeparators(t *testing.T) {
	set := syntax.Default()
	block := Block(set)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "first line",
			in:   "Application started! Application started!\nnext\n",
			want: block + "Application started! Application started!\nnext\n",
		},
		{
			name: "two cycles",
			in:   "boot\nApplication started!\nrun\nApplication started!\n",
			want: "boot\n" + block + "Application started!\nrun\n" + block + "Application started!\n",
		},
		{
			name: "no marks",
			in:   "nothing\n",
			want: "nothing\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(buffer.New(tt.in), set)
			if err != nil {
				t.Fatalf("Apply returned error: %v", err)
			}
			if got.String() != tt.want {
				t.Fatalf("Apply = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestSeparators_Idempotent(t *testing.T) {
	set := syntax.Default()
	once, err := Apply(buffer.New("boot\nApplication started!\n"), set)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	twice, err := Apply(once, set)
	if err != nil {
		t.Fatalf("second Apply returned error: %v", err)
	}
	if once.String() != twice.String() {
		t.Fatalf("second Apply changed text:\n%s", twice.String())
	}
	if n := strings.Count(twice.String(), set.Pattern(syntax.MsgString)); n != 1 {
		t.Fatalf("separator count = %d, want 1", n)
	}
}

func TestSeparators_MissingPatterns(t *testing.T) {
	set, err := syntax.New(map[string]string{syntax.AppMark: "start"})
	if err != nil {
		t.Fatalf("syntax.New: %v", err)
	}
	if _, err := Separators(buffer.New("start\n"), set); err == nil {
		t.Fatalf("Separators returned nil error with missing patterns")
	}
}

func TestIsLogFile(t *testing.T) {
	tests := map[string]bool{
		"/tmp/SmartDeviceLinkCore.log": true,
		"core.log.1":                   true,
		"/var/log.d/notes.txt":         false,
		"trace.txt":                    false,
	}
	for name, want := range tests {
		if got := IsLogFile(name); got != want {
			t.Fatalf("IsLogFile(%q) = %v, want %v", name, got, want)
		}
	}
}
