// Package trace analyses Enter/Exit traces: it reports calls that never
// exit and indents one call site's traces into a call tree.
package trace

import (
	"regexp"
	"strings"

	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/syntax"
)

// callSiteSkip is the width of the source-location tag (".cc:NNN ") that
// precedes the call text in an Enter match.
const callSiteSkip = 8

const signatureEnd = ": "

// Report is the outcome of one pairing pass.
type Report struct {
	// Unpaired holds one range per Enter trace without a matching Exit, in
	// buffer order. Each range starts past the source-location tag.
	Unpaired []buffer.Range
	// Malformed is set when the pass stopped early on an Enter match whose
	// call signature could not be derived.
	Malformed *buffer.Range
}

// Complete reports whether the pass scanned the whole buffer.
func (r Report) Complete() bool {
	return r.Malformed == nil
}

// FindUnpairedCalls scans buf for Enter traces lacking an Exit trace with the
// same call signature. The only error is a missing pattern; a malformed Enter
// trace ends the pass and is reported through Report.Malformed.
func FindUnpairedCalls(buf *buffer.Buffer, set *syntax.Set) (Report, error) {
	if err := set.Require(syntax.ThreadEnter, syntax.ThreadExit); err != nil {
		return Report{}, err
	}
	enterRe := set.ThreadEnter()
	exitMarker := set.Pattern(syntax.ThreadExit)

	var report Report
	pos := 0
	for pos <= buf.Len() {
		enter, ok := buf.Find(enterRe, pos)
		if !ok {
			break
		}
		sig, ok := Signature(buf.Text(enter))
		if !ok {
			malformed := enter
			report.Malformed = &malformed
			break
		}

		exitRe, err := regexp.Compile(regexp.QuoteMeta(sig) + exitMarker)
		if err != nil {
			// The marker compiled on its own; a failure here means it only
			// works as a prefix. Treat the trace as malformed.
			malformed := enter
			report.Malformed = &malformed
			break
		}
		if _, paired := buf.Find(exitRe, pos); !paired {
			report.Unpaired = append(report.Unpaired, callSite(enter))
		}

		next := enter.End
		if next <= pos {
			next = pos + 1
		}
		pos = next
	}
	return report, nil
}

// Signature extracts the call signature from the text of an Enter match: the
// part after the first space up to and including the next ": ".
func Signature(enterText string) (string, bool) {
	space := strings.IndexByte(enterText, ' ')
	if space < 0 {
		return "", false
	}
	rest := enterText[space+1:]
	end := strings.Index(rest, signatureEnd)
	if end < 0 {
		return "", false
	}
	return rest[:end+len(signatureEnd)], true
}

func callSite(enter buffer.Range) buffer.Range {
	start := enter.Start + callSiteSkip
	if start > enter.End {
		start = enter.End
	}
	return buffer.Range{Start: start, End: enter.End}
}
