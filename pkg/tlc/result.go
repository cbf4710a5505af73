// Package tlc parses TLC model-checker output into structured results and
// runs TLC itself, either as a local subprocess or inside a container, per
// spec.md §4.7 and SPEC_FULL.md's containerized-backend addition.
package tlc

// ViolationKind enumerates the ways TLC reports a failed check.
type ViolationKind string

const (
	KindInvariant      ViolationKind = "invariant"
	KindActionProperty ViolationKind = "action_property"
	KindDeadlock       ViolationKind = "deadlock"
	KindTemporal       ViolationKind = "temporal"
	KindError          ViolationKind = "error"
)

// TraceEntry is one state in a counterexample trace.
type TraceEntry struct {
	Number      int
	Action      string
	Assignments []Assignment
}

// Assignment is one (variable, literal text) pair within a trace entry.
type Assignment struct {
	Var   string
	Value string
}

// Violation describes a failed check, with the trace that reproduces it.
type Violation struct {
	Kind     ViolationKind
	Property string
	Trace    []TraceEntry
}

// Stats summarizes a completed (successful or not) TLC run.
type Stats struct {
	DistinctStates int
	StatesFound    int
	Depth          int
}

// Result is the outcome of one TLC invocation: either Ok with Stats, or a
// Violation alongside whatever Stats TLC printed before failing.
type Result struct {
	Ok        bool
	Stats     Stats
	Violation *Violation
}
