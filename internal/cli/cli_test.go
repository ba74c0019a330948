package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/sdllogs/sdllogs/internal/syntax"
)

var sampleLines = []string{
	"TRACE [05 Mar 2020 10:11:12,345][0x000000000001][Connection] /home/ci/sdl_core/src/components/tcp.cc:120 SendData: Enter",
	"TRACE [05 Mar 2020 10:11:12,346][0x000000000002][Connection] /home/ci/sdl_core/src/components/tcp.cc:200 Recv: Enter",
	"TRACE [05 Mar 2020 10:11:12,347][0x000000000001][Connection] /home/ci/sdl_core/src/components/tcp.cc:130 SendData: Exit",
}

func writeLog(t *testing.T, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	color.NoColor = true

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUnpairedCommand(t *testing.T) {
	broken := writeLog(t, "core.txt", sampleLines)
	clean := writeLog(t, "clean.txt", []string{sampleLines[0], sampleLines[2]})

	out, err := runCLI(t, "unpaired", "--jobs", "2", broken, clean)
	if err != nil {
		t.Fatalf("unpaired returned error: %v", err)
	}
	if !strings.Contains(out, broken+": 1 unpaired") {
		t.Fatalf("missing unpaired header:\n%s", out)
	}
	if !strings.Contains(out, "      2  "+sampleLines[1]) {
		t.Fatalf("missing unpaired line:\n%s", out)
	}
	if !strings.Contains(out, clean+": all calls paired") {
		t.Fatalf("missing clean result:\n%s", out)
	}
	if strings.Index(out, broken) > strings.Index(out, clean) {
		t.Fatalf("results out of argument order:\n%s", out)
	}
}

func TestUnpairedCommand_MissingFile(t *testing.T) {
	if _, err := runCLI(t, "unpaired", filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatalf("unpaired on a missing file returned nil error")
	}
}

func TestTreeCommand(t *testing.T) {
	path := writeLog(t, "core.txt", sampleLines)

	tests := []struct {
		name string
		args []string
	}{
		{"bare thread", []string{"--thread", "0x000000000001"}},
		{"bracketed thread", []string{"--thread", "[0x000000000001]"}},
		{"thread of line", []string{"--line", "3"}},
		{"signature", []string{"--signature", "[0x000000000001]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, append([]string{"tree", path}, tt.args...)...)
			if err != nil {
				t.Fatalf("tree returned error: %v", err)
			}
			lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
			if len(lines) != 2 {
				t.Fatalf("tree printed %d lines, want 2:\n%s", len(lines), out)
			}
			for _, l := range lines {
				if !strings.HasPrefix(l, "     TRACE") || !strings.Contains(l, "0x000000000001") {
					t.Fatalf("unexpected tree line %q", l)
				}
			}
		})
	}
}

func TestTreeCommand_Errors(t *testing.T) {
	path := writeLog(t, "core.txt", sampleLines)
	tests := []struct {
		name string
		args []string
	}{
		{"no selector", nil},
		{"line out of range", []string{"--line", "9"}},
		{"two selectors", []string{"--line", "1", "--thread", "0x000000000001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, append([]string{"tree", path}, tt.args...)...); err == nil {
				t.Fatalf("tree %v returned nil error", tt.args)
			}
		})
	}
}

func TestFilterCommand(t *testing.T) {
	path := writeLog(t, "core.txt", sampleLines)

	out, err := runCLI(t, "filter", path, "SendData")
	if err != nil {
		t.Fatalf("filter returned error: %v", err)
	}
	if got := strings.Count(out, "SendData"); got != 2 {
		t.Fatalf("filter printed %d SendData lines, want 2:\n%s", got, out)
	}
	if strings.Contains(out, "Recv") {
		t.Fatalf("filter kept a non-matching line:\n%s", out)
	}

	if _, err := runCLI(t, "filter", path, "("); err == nil {
		t.Fatalf("invalid pattern returned nil error")
	}
}

func TestFoldCommand(t *testing.T) {
	path := writeLog(t, "core.txt", sampleLines)

	out, err := runCLI(t, "fold", path, "--date", "--placeholder", "~")
	if err != nil {
		t.Fatalf("fold returned error: %v", err)
	}
	if strings.Contains(out, "05 Mar 2020") {
		t.Fatalf("timestamps not folded:\n%s", out)
	}
	if !strings.Contains(out, "~") || !strings.Contains(out, "0x000000000001") {
		t.Fatalf("unexpected fold output:\n%s", out)
	}

	out, err = runCLI(t, "fold", path)
	if err != nil {
		t.Fatalf("fold returned error: %v", err)
	}
	if !strings.Contains(out, "05 Mar 2020") {
		t.Fatalf("fold without flags changed the text:\n%s", out)
	}
}

func TestIgnitionCommand(t *testing.T) {
	lines := []string{
		"boot",
		"INFO [05 Mar 2020 10:11:12,345][0x000000000001][Main] Application started!",
		"TRACE next",
	}
	path := writeLog(t, "core.txt", lines)

	out, err := runCLI(t, "ignition", path)
	if err != nil {
		t.Fatalf("ignition returned error: %v", err)
	}
	msg := syntax.Default().Pattern(syntax.MsgString)
	if !strings.Contains(out, msg) {
		t.Fatalf("separator %q missing:\n%s", msg, out)
	}
	if strings.Index(out, msg) > strings.Index(out, "Application started!") {
		t.Fatalf("separator not placed before the start mark:\n%s", out)
	}
}

func TestJumpCommand(t *testing.T) {
	path := writeLog(t, "core.txt", sampleLines)
	src := t.TempDir()
	file := filepath.Join(src, "sdl_core", "src", "components", "tcp.cc")
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(file, []byte("int main() {}\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, err := runCLI(t, "jump", path, "--line", "2", "--source-path", src)
	if err != nil {
		t.Fatalf("jump returned error: %v", err)
	}
	if want := file + ":200\n"; out != want {
		t.Fatalf("jump = %q, want %q", out, want)
	}

	if _, err := runCLI(t, "jump", path, "--line", "2", "--source-path", t.TempDir()); err == nil {
		t.Fatalf("jump to a missing file returned nil error")
	}
}

func TestExportCommand(t *testing.T) {
	path := writeLog(t, "core.txt", sampleLines)

	dest := filepath.Join(t.TempDir(), "core.parquet")
	out, err := runCLI(t, "export", path, "--out", dest)
	if err != nil {
		t.Fatalf("export returned error: %v", err)
	}
	if !strings.Contains(out, "wrote 3 rows") {
		t.Fatalf("unexpected output %q", out)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PAR1")) {
		t.Fatalf("output is not a Parquet file")
	}

	bucket := t.TempDir()
	out, err = runCLI(t, "export", path, "--bucket", "file://"+bucket)
	if err != nil {
		t.Fatalf("export to bucket returned error: %v", err)
	}
	if !strings.Contains(out, "uploaded 3 rows") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(bucket, "core.txt.parquet")); err != nil {
		t.Fatalf("uploaded object missing: %v", err)
	}

	if _, err := runCLI(t, "export", path); err == nil {
		t.Fatalf("export without a destination returned nil error")
	}
}

func TestSyntaxCommand(t *testing.T) {
	out, err := runCLI(t, "syntax", "--check")
	if err != nil {
		t.Fatalf("syntax --check returned error: %v", err)
	}
	if !strings.HasPrefix(out, "ok: builtin") {
		t.Fatalf("syntax --check = %q", out)
	}

	out, err = runCLI(t, "syntax")
	if err != nil {
		t.Fatalf("syntax returned error: %v", err)
	}
	for _, name := range syntax.Names {
		if !strings.Contains(out, name) {
			t.Fatalf("pattern %q not listed:\n%s", name, out)
		}
	}
}

func TestThreadTag(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0x7f0a1b2c3d4e", "[0x7f0a1b2c3d4e]"},
		{" [0x7f0a1b2c3d4e] ", "[0x7f0a1b2c3d4e]"},
	}
	for _, tt := range tests {
		if got := threadTag(tt.in); got != tt.want {
			t.Errorf("threadTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
