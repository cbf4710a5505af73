// Package exercise implements Accord's property-based exerciser: it drives
// a fresh monitor/server pair through generated command sequences and
// checks each step's actual outcome against what the IR predicts.
package exercise

import "github.com/ternarybob/accord/pkg/monitor"

// CommandKind is one of the five command shapes spec.md enumerates.
type CommandKind int

const (
	CmdValid CommandKind = iota
	CmdBadType
	CmdWrongState
	CmdGuardFail
	CmdUnknown
)

func (k CommandKind) String() string {
	switch k {
	case CmdValid:
		return "valid"
	case CmdBadType:
		return "bad_type"
	case CmdWrongState:
		return "wrong_state"
	case CmdGuardFail:
		return "guard_fail"
	case CmdUnknown:
		return "unknown"
	default:
		return "unknown_kind"
	}
}

// Outcome is a step's predicted or observed result. Either marks an
// expected outcome as satisfied by any actual result, used for the
// wrong_state "tag happens to be valid here" edge case.
type Outcome struct {
	OK     bool
	Either bool
	Blame  monitor.Blame
	Kind   monitor.Kind
}

func okOutcome() Outcome { return Outcome{OK: true} }

func eitherOutcome() Outcome { return Outcome{Either: true} }

func violationOutcome(blame monitor.Blame, kind monitor.Kind) Outcome {
	return Outcome{Blame: blame, Kind: kind}
}

func outcomeFromViolation(v *monitor.Violation) Outcome {
	if v == nil {
		return okOutcome()
	}
	return violationOutcome(v.Blame, v.Kind)
}

// matches reports whether actual satisfies expected.
func matches(expected, actual Outcome) bool {
	if expected.Either {
		return true
	}
	if expected.OK {
		return actual.OK
	}
	if actual.OK {
		return false
	}
	return actual.Blame == expected.Blame && actual.Kind == expected.Kind
}

// Step is one executed command and its bookkeeping.
type Step struct {
	Index    int
	Command  CommandKind
	State    string
	Tag      string
	Message  any
	Expected Outcome
	Actual   Outcome
	Passed   bool
}
