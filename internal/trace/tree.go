package trace

import (
	"strings"

	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/filter"
	"github.com/sdllogs/sdllogs/internal/syntax"
)

// DefaultIndentUnit is prepended once per nesting level.
const DefaultIndentUnit = "     "

// IndentCallTree returns one insertion per line containing signature. An Exit
// line is dedented before it is indented so that it lines up with its Enter;
// an Enter line deepens every line after it. Offsets are in buf's coordinates
// and are applied with buffer.Apply.
//
// Dedenting an Exit before recording it is deliberate: an enter, exit, enter
// sequence of one call yields depths 1, 1, 1.
//
// The depth counter is not clamped. An Exit without a preceding Enter drives
// it to zero or below, and such lines render with no indent.
func IndentCallTree(buf *buffer.Buffer, signature string, set *syntax.Set, unit string) ([]buffer.Insertion, error) {
	if signature == "" {
		return []buffer.Insertion{}, nil
	}
	if err := set.Require(syntax.ThreadEnter, syntax.ThreadExit); err != nil {
		return nil, err
	}
	if unit == "" {
		unit = DefaultIndentUnit
	}
	enterRe := set.ThreadEnter()
	exitRe := set.ThreadExit()

	insertions := []buffer.Insertion{}
	depth := 1
	pos := 0
	for {
		hit, ok := buf.FindLiteral(signature, pos)
		if !ok {
			break
		}
		full := buf.FullLine(hit.Start)
		line := buf.Text(buf.Line(hit.Start))

		isEnter := enterRe.MatchString(line)
		if !isEnter && exitRe.MatchString(line) {
			depth--
		}
		insertions = append(insertions, buffer.Insertion{
			Offset: full.Start,
			Text:   indent(unit, depth),
			Depth:  depth,
		})
		if isEnter {
			depth++
		}

		if full.End <= pos {
			break
		}
		pos = full.End
	}
	return insertions, nil
}

func indent(unit string, depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(unit, depth)
}

// ThreadOf returns the thread id of line: the first capture group of the
// thread pattern, or the whole match when the pattern has no group.
func ThreadOf(line string, set *syntax.Set) (string, bool) {
	re := set.Regexp(syntax.Thread)
	if re == nil {
		return "", false
	}
	sub := re.FindStringSubmatch(line)
	switch {
	case sub == nil:
		return "", false
	case len(sub) > 1 && sub[1] != "":
		return sub[1], true
	default:
		return sub[0], true
	}
}

// ThreadTag returns the full text matched by the thread pattern, brackets
// included. It is the signature used to build a per-thread call tree.
func ThreadTag(line string, set *syntax.Set) (string, bool) {
	re := set.Regexp(syntax.Thread)
	if re == nil {
		return "", false
	}
	tag := re.FindString(line)
	return tag, tag != ""
}

// CallTree collects the lines containing signature into a new buffer and
// returns them indented by call depth.
func CallTree(buf *buffer.Buffer, signature string, set *syntax.Set, unit string) (*buffer.Buffer, error) {
	if err := set.Require(syntax.ThreadEnter, syntax.ThreadExit); err != nil {
		return nil, err
	}
	lines := filter.Literal(buf, signature)
	insertions, err := IndentCallTree(lines, signature, set, unit)
	if err != nil {
		return nil, err
	}
	return buffer.New(buffer.Apply(lines.String(), insertions)), nil
}
