package trace

import (
	"iter"
	"strconv"
	"strings"

	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/syntax"
)

// Kind classifies a trace line.
type Kind int

const (
	Plain Kind = iota
	Enter
	Exit
)

func (k Kind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Exit:
		return "exit"
	default:
		return "plain"
	}
}

// Record is one log line split into its fields. Fields the pattern set does
// not find are left empty.
type Record struct {
	Index      int // zero-based line number
	Offset     int
	Timestamp  string
	Thread     string
	Component  string
	Source     string // path below the source marker, extension included
	SourceLine int
	Message    string
	Kind       Kind
	Raw        string
}

// Parse yields one Record per line of buf.
func Parse(buf *buffer.Buffer, set *syntax.Set) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for i := 0; i < buf.LineCount(); i++ {
			r := buf.LineRange(i)
			rec := ParseLine(buf.Text(r), set)
			rec.Index = i
			rec.Offset = r.Start
			if !yield(rec) {
				return
			}
		}
	}
}

// ParseLine splits a single line.
func ParseLine(line string, set *syntax.Set) Record {
	rec := Record{Raw: line}
	if set == nil {
		return rec
	}
	if re := set.Regexp(syntax.DateTime); re != nil {
		rec.Timestamp = strings.TrimSpace(strings.Trim(re.FindString(line), "[]"))
	}
	if id, ok := ThreadOf(line, set); ok {
		rec.Thread = id
	}
	if re := set.Regexp(syntax.Component); re != nil {
		rec.Component = strings.Trim(strings.TrimSpace(re.FindString(line)), "[]")
	}
	if re := set.Regexp(syntax.Path); re != nil {
		if m := re.FindString(line); m != "" {
			if colon := strings.LastIndexByte(m, ':'); colon > 0 {
				m = m[:colon]
			}
			rec.Source = trimToMarker(m)
		}
	}
	if re := set.Regexp(syntax.Line); re != nil {
		if sub := re.FindStringSubmatch(line); len(sub) > 1 {
			rec.SourceLine, _ = strconv.Atoi(sub[1])
		}
	}
	if re := set.Regexp(syntax.Message); re != nil {
		if sub := re.FindStringSubmatch(line); len(sub) > 1 {
			rec.Message = sub[len(sub)-1]
		}
	}

	switch {
	case set.ThreadEnter() != nil && set.ThreadEnter().MatchString(line):
		rec.Kind = Enter
	case set.ThreadExit() != nil && set.ThreadExit().MatchString(rec.tail()):
		rec.Kind = Exit
	}
	return rec
}

// tail is the part of the line an Exit marker may appear in: the message when
// one was found, otherwise the whole line.
func (r Record) tail() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Raw
}

// trimToMarker drops everything up to and including "src/" in a path match so
// that Source is relative to the source tree.
func trimToMarker(path string) string {
	const marker = "/src/"
	if i := strings.Index(path, marker); i >= 0 {
		return path[i+len(marker):]
	}
	return path
}
