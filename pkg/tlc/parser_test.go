package tlc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const successOutput = `TLC2 Version 2.18 of Day Month Year
Running breadth-first search Model-Checking with fp 64 and seed -1234567890123456789 with 1 worker on 1 cores.
Model checking completed. No error has been found.
42 states generated, 17 distinct states found, 0 states left on queue.
The depth of the complete state graph search is 5.
`

const invariantViolationOutput = `TLC2 Version 2.18 of Day Month Year
Invariant fence_bounded_0 is violated.
The behavior up to this point is:
State 1: <Initial predicate>
/\ pc = "unlocked"
/\ fence = 0
/\ holder = NULL

State 2: <unlocked_acquire_0_0 line 12, col 3 to line 15, col 40 of module Lock>
/\ pc = "locked"
/\ fence = 1
/\ holder = "A"

State 3: <locked_release_0_0 line 20, col 3 to line 23, col 12 of module Lock>
/\ pc = "unlocked"
/\ fence = 1
/\ holder = NULL

State 4: <unlocked_acquire_0_0 line 12, col 3 to line 15, col 40 of module Lock>
/\ pc = "locked"
/\ fence = 3
/\ holder = "B"

37 states generated, 12 distinct states found, 0 states left on queue.
The depth of the complete state graph search is 4.
`

func TestParseSuccessResult(t *testing.T) {
	res := Parse(successOutput)
	require.True(t, res.Ok)
	require.Nil(t, res.Violation)
	require.Equal(t, 17, res.Stats.DistinctStates)
	require.Equal(t, 5, res.Stats.Depth)
}

func TestParseInvariantViolationTrace(t *testing.T) {
	res := Parse(invariantViolationOutput)
	require.False(t, res.Ok)
	require.NotNil(t, res.Violation)
	require.Equal(t, KindInvariant, res.Violation.Kind)
	require.Equal(t, "fence_bounded_0", res.Violation.Property)
	require.Len(t, res.Violation.Trace, 4)

	last := res.Violation.Trace[3]
	require.Equal(t, 4, last.Number)
	require.Contains(t, last.Action, "unlocked_acquire_0_0")

	var fence string
	for _, a := range last.Assignments {
		if a.Var == "fence" {
			fence = a.Value
		}
	}
	require.Equal(t, "3", fence)
	require.Equal(t, 12, res.Stats.DistinctStates)
	require.Equal(t, 4, res.Stats.Depth)
}

func TestParseDeadlock(t *testing.T) {
	res := Parse("Deadlock reached.\nState 1: <Initial predicate>\n/\\ pc = \"ready\"\n")
	require.False(t, res.Ok)
	require.Equal(t, KindDeadlock, res.Violation.Kind)
	require.Len(t, res.Violation.Trace, 1)
}

func TestParseTruncatedOutputIsBestEffort(t *testing.T) {
	truncated := `Invariant inv is violated.
The behavior up to this point is:
State 1: <Initial predicate>
/\ pc = "ready"
/\ total = 0

State 2: <ready_increment_0_0`
	res := Parse(truncated)
	require.False(t, res.Ok)
	require.Len(t, res.Violation.Trace, 2, "a best-effort trace keeps the dangling final header even with no assignments")
	require.Empty(t, res.Violation.Trace[1].Assignments)
}
