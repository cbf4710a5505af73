package monitor

import (
	"fmt"

	"github.com/ternarybob/accord/pkg/ir"
)

// Kind enumerates the violation vocabulary from spec.md §7.
type Kind string

const (
	KindSessionEnded      Kind = "session_ended"
	KindInvalidMessage    Kind = "invalid_message"
	KindArgumentType      Kind = "argument_type"
	KindGuardFailed       Kind = "guard_failed"
	KindTimeout           Kind = "timeout"
	KindInvalidReply      Kind = "invalid_reply"
	KindInvariantViolated Kind = "invariant_violated"
	KindActionViolated    Kind = "action_violated"
	KindLivenessViolated  Kind = "liveness_violated"
	KindForbiddenViolated Kind = "forbidden_violated"
	KindCorrespondence    Kind = "correspondence_violated"
	KindPrecedence        Kind = "precedence_violated"
	KindOrdered           Kind = "ordered_violated"
	KindBounded           Kind = "bounded_violated"
)

// Violation is the record returned/delivered when a message fails the
// contract. Its shape matches the client-surface contract in spec.md §6:
// {blame, kind, state, message, reply?, context, span?}.
type Violation struct {
	Blame   Blame
	Kind    Kind
	State   string
	Message any
	Reply   any
	Context map[string]any
	Span    *ir.Span
}

func (v *Violation) Error() string {
	return fmt.Sprintf("accord: %s violation %q in state %q: %v", v.Blame, v.Kind, v.State, v.Context)
}

func violation(blame Blame, kind Kind, state string, message any, ctx map[string]any) *Violation {
	return &Violation{Blame: blame, Kind: kind, State: state, Message: message, Context: ctx}
}
