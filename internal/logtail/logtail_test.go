package logtail

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sdllogs/sdllogs/internal/syntax"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestLoad_NormalisesCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.txt")
	if err := os.WriteFile(path, []byte("one\r\ntwo\r\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	buf, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if buf.String() != "one\ntwo\n" {
		t.Fatalf("Load() = %q, want %q", buf.String(), "one\ntwo\n")
	}
}

func TestLoad_InsertsSeparatorsIntoLogFiles(t *testing.T) {
	set := syntax.Default()
	dir := t.TempDir()
	content := []byte("boot\nApplication started!\n")

	logPath := filepath.Join(dir, "core.log")
	txtPath := filepath.Join(dir, "core.txt")
	for _, p := range []string{logPath, txtPath} {
		if err := os.WriteFile(p, content, 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	opts := Options{Syntax: set, Separators: true}
	buf, err := Load(logPath, opts)
	if err != nil {
		t.Fatalf("Load(.log) error = %v", err)
	}
	if !strings.Contains(buf.String(), set.Pattern(syntax.MsgString)) {
		t.Fatalf("Load(.log) = %q, want an ignition separator", buf.String())
	}

	buf, err = Load(txtPath, opts)
	if err != nil {
		t.Fatalf("Load(.txt) error = %v", err)
	}
	if buf.String() != string(content) {
		t.Fatalf("Load(.txt) = %q, want the file unchanged", buf.String())
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.log"), Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load() error = %v, want os.ErrNotExist", err)
	}
}
