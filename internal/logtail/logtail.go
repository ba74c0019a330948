package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/ignition"
	"github.com/sdllogs/sdllogs/internal/syntax"
)

const maxLineBytes = 4 * 1024 * 1024

// Read returns at most maxLines from the end of the file at path. A maxLines
// of zero or less reads every line. A missing file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Options control how Load builds a buffer.
type Options struct {
	MaxLines int // zero reads the whole file
	// Syntax is required when Separators is set.
	Syntax *syntax.Set
	// Separators inserts ignition cycle separators into .log files.
	Separators bool
}

// Load reads the file at path into a buffer with CRLF line breaks normalised.
// Unlike Read, a missing file is an error.
func Load(path string, opts Options) (*buffer.Buffer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	lines, err := Read(path, opts.MaxLines)
	if err != nil {
		return nil, err
	}
	buf := buffer.FromLines(lines)
	if !opts.Separators || !ignition.IsLogFile(path) {
		return buf, nil
	}
	withSeparators, err := ignition.Apply(buf, opts.Syntax)
	if err != nil {
		return nil, fmt.Errorf("ignition separators: %w", err)
	}
	return withSeparators, nil
}
