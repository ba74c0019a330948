// Package jump turns the source reference embedded in a trace line into a
// file on disk and a line number.
package jump

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMarker separates the build machine prefix from the path inside the
// source tree.
const DefaultMarker = "/sdl_core/src/"

// ErrNoReference means the line carries nothing that looks like a path.
var ErrNoReference = errors.New("no source reference on line")

var pathLike = regexp.MustCompile(`(?:/[^/\s]+)+/?`)

// MarkerError is returned for a path that lacks the source marker.
type MarkerError struct {
	Marker string
	Path   string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("expected '%s' in '%s'", e.Marker, e.Path)
}

// NotFoundError is returned when no strategy located the file.
type NotFoundError struct {
	Path string
	Hint string
}

func (e *NotFoundError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("file '%s' not found", e.Path)
	}
	return fmt.Sprintf("file '%s' not found: %s", e.Path, e.Hint)
}

// Reference is a source location as written in a trace.
type Reference struct {
	Prefix   string // build machine directory before the marker
	Relative string // marker and path below it, e.g. /sdl_core/src/a/b.cc
	Line     int
}

// Location is a resolved file.
type Location struct {
	Path string
	Line int
}

func referencePattern(marker string) *regexp.Regexp {
	return regexp.MustCompile(`(\S*?)(` + regexp.QuoteMeta(marker) + `\S*?\.(?:cc|h|cpp|hpp)):([0-9]{1,9})`)
}

// ParseReference finds the source reference in line. An empty marker means
// DefaultMarker.
func ParseReference(line, marker string) (Reference, error) {
	if marker == "" {
		marker = DefaultMarker
	}
	sub := referencePattern(marker).FindStringSubmatch(line)
	if sub == nil {
		if p := pathLike.FindString(line); p != "" {
			return Reference{}, &MarkerError{Marker: marker, Path: p}
		}
		return Reference{}, ErrNoReference
	}
	n, err := strconv.Atoi(sub[3])
	if err != nil {
		return Reference{}, fmt.Errorf("line number %q: %w", sub[3], err)
	}
	return Reference{Prefix: sub[1], Relative: sub[2], Line: n}, nil
}

// Resolver locates referenced files on this machine.
type Resolver struct {
	// SourcePath is the local directory that replaces the build prefix. Empty
	// means the prefix is used verbatim.
	SourcePath string
}

// Resolve tries the configured source path (or the verbatim prefix), then a
// recursive search for the relative path, then a search by file name that
// prefers the longest matching path suffix.
func (r Resolver) Resolve(ref Reference) (Location, error) {
	direct := ref.Prefix + ref.Relative
	if r.SourcePath != "" {
		direct = filepath.Join(r.SourcePath, filepath.FromSlash(ref.Relative))
	}
	if isFile(direct) {
		return Location{Path: direct, Line: ref.Line}, nil
	}

	root := r.searchRoot(ref)
	if root != "" {
		rel := strings.TrimPrefix(ref.Relative, "/")
		if found := glob(root, "**/"+escapeMeta(rel)); len(found) > 0 {
			return Location{Path: found[0], Line: ref.Line}, nil
		}
		if found := glob(root, "**/"+escapeMeta(path.Base(rel))); len(found) > 0 {
			return Location{Path: bestSuffix(found, rel), Line: ref.Line}, nil
		}
	}

	hint := "set source_path to the directory that contains the source tree"
	if r.SourcePath != "" {
		hint = "source_path may be wrong or the file is absent"
	}
	return Location{}, &NotFoundError{Path: direct, Hint: hint}
}

// searchRoot is the configured source path, or the deepest existing
// directory above the verbatim prefix. The filesystem root is never searched.
func (r Resolver) searchRoot(ref Reference) string {
	if r.SourcePath != "" {
		if isDir(r.SourcePath) {
			return r.SourcePath
		}
		return ""
	}
	if ref.Prefix == "" {
		return ""
	}
	dir := filepath.Clean(ref.Prefix)
	for {
		if isDir(dir) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
	if filepath.Dir(dir) == dir {
		return ""
	}
	return dir
}

func glob(root, pattern string) []string {
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil
	}
	var files []string
	for _, m := range matches {
		full := filepath.Join(root, filepath.FromSlash(m))
		if isFile(full) {
			files = append(files, full)
		}
	}
	return files
}

// bestSuffix picks the candidate sharing the most trailing path elements with rel.
func bestSuffix(candidates []string, rel string) string {
	want := strings.Split(rel, "/")
	best, bestScore := candidates[0], -1
	for _, c := range candidates {
		got := strings.Split(filepath.ToSlash(c), "/")
		score := 0
		for score < len(want) && score < len(got) &&
			want[len(want)-1-score] == got[len(got)-1-score] {
			score++
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

func escapeMeta(p string) string {
	var b strings.Builder
	for _, r := range p {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
