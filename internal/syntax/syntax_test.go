package syntax

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
)

const sampleEnter = "TRACE [05 Mar 2020 10:11:12,345][0x7f0a1b2c3d4e][Connection] /home/ci/sdl_core/src/components/transport/tcp.cc:120 SendData: Enter"

func TestDefault_DefinesEveryName(t *testing.T) {
	set := Default()
	if err := set.Require(Names...); err != nil {
		t.Fatalf("Require(Names) = %v, want nil", err)
	}
	if set.Source() != "builtin" {
		t.Fatalf("Source() = %q, want builtin", set.Source())
	}
	if got := set.Pattern(ThreadExit); got != "Exit" {
		t.Fatalf("thread_exit = %q, want it trimmed to %q", got, "Exit")
	}
	if set.Regexp(BorderString) != nil {
		t.Fatalf("border_string compiled, want literal")
	}
}

func TestDefault_MatchesSampleTrace(t *testing.T) {
	set := Default()
	tests := []struct {
		name string
		want string
	}{
		{DateTime, "[05 Mar 2020 10:11:12,345]"},
		{ID, "[0x7f0a1b2c3d4e]"},
		{Component, "[Connection] "},
		{Junk, " /home/ci/sdl_core/src/"},
		{ThreadEnter, ".cc:120 SendData: Enter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := set.Regexp(tt.name).FindString(sampleEnter)
			if got != tt.want {
				t.Fatalf("%s matched %q, want %q", tt.name, got, tt.want)
			}
		})
	}

	sub := set.Regexp(Thread).FindStringSubmatch(sampleEnter)
	if len(sub) < 2 || sub[1] != "0x7f0a1b2c3d4e" {
		t.Fatalf("thread submatch = %v, want 0x7f0a1b2c3d4e", sub)
	}
}

func TestLoad_EmptyPathUsesBuiltin(t *testing.T) {
	set, err := Load("  ")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if set.Source() != "builtin" {
		t.Fatalf("Source() = %q, want builtin", set.Source())
	}
}

func TestLoad_ReadsVariablesBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdl.sublime-syntax")
	var b strings.Builder
	b.WriteString("name: custom\nvariables:\n")
	for _, name := range Names {
		b.WriteString("  " + name + ": 'x" + name + "'\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := set.Pattern(AppMark); got != "xapp_mark" {
		t.Fatalf("app_mark = %q, want %q", got, "xapp_mark")
	}
	if set.Source() != path {
		t.Fatalf("Source() = %q, want %q", set.Source(), path)
	}
	want := slices.Clone(Names)
	slices.Sort(want)
	if !reflect.DeepEqual(set.Names(), want) {
		t.Fatalf("Names() = %v", set.Names())
	}
}

func TestLoad_MissingNamesReportPatternNotLoaded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	content := "variables:\n  thread_enter: 'Enter'\n  thread_exit: ' Exit'\n  junk: ''\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrPatternNotLoaded) {
		t.Fatalf("Load error = %v, want ErrPatternNotLoaded", err)
	}
	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("Load error = %T, want *MissingError", err)
	}
	for _, name := range []string{Junk, DateTime, AppMark} {
		if !slices.Contains(missing.Names, name) {
			t.Fatalf("missing = %v, want it to include %q", missing.Names, name)
		}
	}
	if slices.Contains(missing.Names, ThreadEnter) {
		t.Fatalf("missing = %v, thread_enter was defined", missing.Names)
	}
}

func TestLoad_NoVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("name: nothing\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrPatternNotLoaded) {
		t.Fatalf("Load error = %v, want ErrPatternNotLoaded", err)
	}
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("variables: [\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parse syntax") {
		t.Fatalf("Load error = %v, want parse syntax error", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load error = %v, want os.ErrNotExist", err)
	}
}

func TestNew_InvalidRegexNamesKey(t *testing.T) {
	_, err := New(map[string]string{ThreadEnter: "(unclosed"})
	if err == nil || !strings.Contains(err.Error(), ThreadEnter) {
		t.Fatalf("New error = %v, want it to name %s", err, ThreadEnter)
	}
}

func TestRequire_NilSet(t *testing.T) {
	var set *Set
	if err := set.Require(ThreadEnter); !errors.Is(err, ErrPatternNotLoaded) {
		t.Fatalf("Require on nil set = %v, want ErrPatternNotLoaded", err)
	}
}

func TestWith_LeavesReceiverUnchanged(t *testing.T) {
	set := Default()
	next, err := set.With(AppMark, "Booted")
	if err != nil {
		t.Fatalf("With returned error: %v", err)
	}
	if next.Pattern(AppMark) != "Booted" {
		t.Fatalf("next app_mark = %q, want Booted", next.Pattern(AppMark))
	}
	if set.Pattern(AppMark) == "Booted" {
		t.Fatalf("With mutated the receiver")
	}
}
