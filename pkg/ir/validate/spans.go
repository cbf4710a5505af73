package validate

import (
	"bufio"
	"os"
	"strings"

	"github.com/ternarybob/accord/pkg/ir"
)

const passSpans = "span_refinement"

// SpanRefinement tightens coarse line+column spans to precise character
// ranges by locating each transition's message tag on its reported source
// line. It degrades gracefully when the source file is missing or unreadable
// — this pass never produces errors, only (rare) warnings.
func SpanRefinement(i *ir.IR) (*ir.IR, []Diagnostic) {
	if i.SourceFile == "" {
		return i, nil
	}
	lines, err := readLines(i.SourceFile)
	if err != nil {
		return i, []Diagnostic{warnf(passSpans, "span refinement skipped: %v", err)}
	}

	refine := func(tr *ir.Transition) {
		if tr.Span.IsZero() || tr.Span.Line <= 0 || tr.Span.Line > len(lines) {
			return
		}
		line := lines[tr.Span.Line-1]
		if idx := strings.Index(line, tr.MessageTag); idx >= 0 {
			tr.Span.StartByte = idx
			tr.Span.EndByte = idx + len(tr.MessageTag)
		}
	}

	for _, st := range i.States {
		for idx := range st.Transitions {
			refine(&st.Transitions[idx])
		}
	}
	for idx := range i.Anystate {
		refine(&i.Anystate[idx])
	}

	return i, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
