// Package syntax loads the named regular expressions that describe SDL core
// trace lines. A Set is built once and passed explicitly to every operation.
package syntax

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// Pattern names recognised in the variables block of a syntax file.
const (
	ID           = "id"
	Thread       = "thread"
	DateTime     = "date_time"
	Component    = "component"
	Junk         = "junk"
	Path         = "path"
	Line         = "line"
	Message      = "message"
	ThreadEnter  = "thread_enter"
	ThreadExit   = "thread_exit"
	AppMark      = "app_mark"
	MsgString    = "msg_string"
	BorderString = "border_string"
)

// Names lists every pattern a complete syntax file must define.
var Names = []string{
	ID, Thread, DateTime, Component, Junk, Path, Line, Message,
	ThreadEnter, ThreadExit, AppMark, MsgString, BorderString,
}

// literal patterns are inserted as text and never compiled.
var literal = map[string]bool{
	MsgString:    true,
	BorderString: true,
}

// ErrPatternNotLoaded marks an absent or incomplete pattern set.
var ErrPatternNotLoaded = errors.New("pattern not loaded")

// MissingError lists the patterns an operation needed but did not get.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%v: %s", ErrPatternNotLoaded, strings.Join(e.Names, ", "))
}

func (e *MissingError) Unwrap() error {
	return ErrPatternNotLoaded
}

//go:embed default.yaml
var defaultSyntax []byte

// Set is an immutable collection of named patterns with the regex-valued ones
// precompiled.
type Set struct {
	source   string
	patterns map[string]string
	compiled map[string]*regexp.Regexp
}

type file struct {
	Variables map[string]string `yaml:"variables"`
}

// Default returns the built-in SDL core syntax.
func Default() *Set {
	set, err := parse(defaultSyntax, "builtin")
	if err != nil {
		panic(fmt.Sprintf("builtin syntax: %v", err))
	}
	return set
}

// Load reads a syntax file. An empty path returns the built-in set. Every name
// in Names must be present.
func Load(path string) (*Set, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read syntax: %w", err)
	}
	return parse(data, path)
}

func parse(data []byte, source string) (*Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse syntax %s: %w", source, err)
	}
	if len(f.Variables) == 0 {
		return nil, fmt.Errorf("syntax %s has no variables: %w", source, ErrPatternNotLoaded)
	}
	set, err := New(f.Variables)
	if err != nil {
		return nil, fmt.Errorf("syntax %s: %w", source, err)
	}
	if err := set.Require(Names...); err != nil {
		return nil, fmt.Errorf("syntax %s: %w", source, err)
	}
	set.source = source
	return set, nil
}

// New builds a Set from raw patterns. Unknown names are kept; blank values are
// dropped so Require reports them as missing.
func New(patterns map[string]string) (*Set, error) {
	set := &Set{
		source:   "inline",
		patterns: make(map[string]string, len(patterns)),
		compiled: make(map[string]*regexp.Regexp, len(patterns)),
	}
	for name, value := range patterns {
		if name == ThreadExit {
			value = strings.TrimSpace(value)
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		set.patterns[name] = value
		if literal[name] {
			continue
		}
		re, err := regexp.Compile(value)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
		set.compiled[name] = re
	}
	return set, nil
}

// Require returns a *MissingError when any of names is absent.
func (s *Set) Require(names ...string) error {
	if s == nil {
		return &MissingError{Names: names}
	}
	var missing []string
	for _, name := range names {
		if _, ok := s.patterns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingError{Names: missing}
}

// Source returns the file the set was loaded from, "builtin" or "inline".
func (s *Set) Source() string {
	return s.source
}

// Pattern returns the raw pattern string for name.
func (s *Set) Pattern(name string) string {
	if s == nil {
		return ""
	}
	return s.patterns[name]
}

// Regexp returns the compiled pattern for name, or nil for literals and
// absent names.
func (s *Set) Regexp(name string) *regexp.Regexp {
	if s == nil {
		return nil
	}
	return s.compiled[name]
}

// ThreadEnter matches a source location followed by a call and the Enter marker.
func (s *Set) ThreadEnter() *regexp.Regexp { return s.Regexp(ThreadEnter) }

// ThreadExit matches the Exit marker.
func (s *Set) ThreadExit() *regexp.Regexp { return s.Regexp(ThreadExit) }

// Names returns the defined pattern names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.patterns))
	for name := range s.patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// With returns a copy of s with name replaced. The receiver is unchanged.
func (s *Set) With(name, value string) (*Set, error) {
	raw := make(map[string]string, len(s.patterns)+1)
	for k, v := range s.patterns {
		raw[k] = v
	}
	raw[name] = value
	next, err := New(raw)
	if err != nil {
		return nil, err
	}
	next.source = s.source
	return next, nil
}
