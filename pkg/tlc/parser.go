package tlc

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

var (
	reInvariantViolated = regexp.MustCompile(`^Invariant (\S+) is violated`)
	rePropertyViolated  = regexp.MustCompile(`^Property (\S+) is violated`)
	reDeadlock          = regexp.MustCompile(`^Deadlock reached`)
	reTemporalViolated  = regexp.MustCompile(`^Temporal propert(?:y|ies) .* violated`)
	reGenericError      = regexp.MustCompile(`^Error: (.*)`)

	reStateHeader = regexp.MustCompile(`^State (\d+): (.*)$`)
	reAssignment  = regexp.MustCompile(`^/\\\s*(\S+)\s*=\s*(.*?)\s*$`)

	reStatsLine = regexp.MustCompile(`(\d+) states generated,\s*(\d+) distinct states found,\s*(\d+) states left on queue`)
	reDepthLine = regexp.MustCompile(`The depth of the complete state graph search is (\d+)`)

	reSuccess = regexp.MustCompile(`^Model checking completed\. No error has been found`)
)

// Parse translates raw TLC stdout into a Result, per spec.md §4.7. It
// recognizes TLC's banner, the invariant/action-property/deadlock/temporal
// violation markers, and state step headers; every other line is ignored.
// Parsing never fails outright: truncated output simply yields whatever
// trace entries were seen before the stream ended.
func Parse(output string) *Result {
	res := &Result{}
	var v *Violation

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var current *TraceEntry

	flushEntry := func() {
		if current != nil && v != nil {
			v.Trace = append(v.Trace, *current)
			current = nil
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case reSuccess.MatchString(trimmed):
			res.Ok = true

		case reInvariantViolated.MatchString(trimmed):
			m := reInvariantViolated.FindStringSubmatch(trimmed)
			v = &Violation{Kind: KindInvariant, Property: m[1]}

		case rePropertyViolated.MatchString(trimmed):
			m := rePropertyViolated.FindStringSubmatch(trimmed)
			v = &Violation{Kind: KindActionProperty, Property: m[1]}

		case reDeadlock.MatchString(trimmed):
			v = &Violation{Kind: KindDeadlock}

		case reTemporalViolated.MatchString(trimmed):
			v = &Violation{Kind: KindTemporal}

		case reGenericError.MatchString(trimmed):
			if v == nil {
				m := reGenericError.FindStringSubmatch(trimmed)
				v = &Violation{Kind: KindError, Property: m[1]}
			}

		case reStateHeader.MatchString(trimmed):
			flushEntry()
			m := reStateHeader.FindStringSubmatch(trimmed)
			num, _ := strconv.Atoi(m[1])
			current = &TraceEntry{Number: num, Action: m[2]}

		case reAssignment.MatchString(line):
			if current != nil {
				m := reAssignment.FindStringSubmatch(line)
				current.Assignments = append(current.Assignments, Assignment{Var: m[1], Value: m[2]})
			}

		case reStatsLine.MatchString(trimmed):
			m := reStatsLine.FindStringSubmatch(trimmed)
			res.Stats.StatesFound, _ = strconv.Atoi(m[1])
			res.Stats.DistinctStates, _ = strconv.Atoi(m[2])

		case reDepthLine.MatchString(trimmed):
			m := reDepthLine.FindStringSubmatch(trimmed)
			res.Stats.Depth, _ = strconv.Atoi(m[1])
		}
	}
	flushEntry()

	if v != nil {
		res.Ok = false
		res.Violation = v
	}
	return res
}
