package ir

import "sort"

// Role is a participant identity. Used only by TLA+ emission.
type Role struct {
	Name string
	Span Span
}

// Track is a named, typed accumulator carried across transitions.
type Track struct {
	Name    string
	Type    T
	Default any
	Span    Span
}

// TransitionKind distinguishes synchronous calls from fire-and-forget casts.
type TransitionKind int

const (
	Call TransitionKind = iota
	Cast
)

func (k TransitionKind) String() string {
	if k == Call {
		return "call"
	}
	return "cast"
}

// Closure pairs a runtime-callable function with the syntactic form it was
// built from. The runtime form drives the monitor; the syntactic form drives
// TLA+ lowering. Closures are lifted to top-level named functions at IR
// build time so the runtime form never closes over a transient build-time
// environment (see SPEC_FULL.md design notes).
type Closure struct {
	Name   string
	Syntax Expr
}

// Guard is a closure of (message, tracks) -> bool.
type Guard struct {
	Closure
	Fn func(message *Tag, tracks map[string]any) bool
}

// Update is a closure of (message, reply, tracks) -> tracks'. The TLA+
// lowering does not read its embedded Closure.Syntax; the syntactic side
// of an update is TrackExprs, one form per track it touches, since the
// lowering needs a separate primed-assignment expression per VARIABLE
// rather than one opaque whole-map expression.
// Tracks absent from TrackExprs are left UNCHANGED by the lowered action.
type Update struct {
	Closure
	Fn         func(message *Tag, reply any, tracks map[string]any) map[string]any
	TrackExprs map[string]Expr
}

// SameState is the __same__ sentinel: "whichever state dispatched this
// message". Resolved eagerly at dispatch-table build time (see
// SPEC_FULL.md's Open Question decision).
const SameState = "__same__"

// Branch is one possible reply arm of a call transition (or the sole,
// implicit arm of a cast).
type Branch struct {
	ReplyType  T
	NextState  string
	Constraint *Constraint
	Span       Span
}

// Constraint is a post-reply predicate over the accepted reply value.
type Constraint struct {
	Closure
	Fn func(reply any) bool
}

// Transition is an edge triggered by a message pattern, with optional
// guard/update and one or more branches.
type Transition struct {
	// MessageTag is the atom (atom messages) or tuple head (tagged
	// messages) that owns this transition within its state.
	MessageTag string

	Kind TransitionKind

	// MessageTypes has one entry per positional placeholder in the
	// message pattern.
	MessageTypes []T
	ArgNames     []string
	ArgSpans     []Span

	Guard  *Guard
	Update *Update

	Branches []Branch

	Span Span
}

// State is a node in the protocol state machine.
type State struct {
	Name        string
	Terminal    bool
	Transitions []Transition
	Span        Span
}

// CheckKind enumerates the property-check vocabulary.
type CheckKind int

const (
	CheckInvariant CheckKind = iota
	CheckLocalInvariant
	CheckAction
	CheckLiveness
	CheckCorrespondence
	CheckBounded
	CheckOrdered
	CheckPrecedence
	CheckReachable
	CheckForbidden
)

func (k CheckKind) String() string {
	switch k {
	case CheckInvariant:
		return "invariant"
	case CheckLocalInvariant:
		return "local_invariant"
	case CheckAction:
		return "action"
	case CheckLiveness:
		return "liveness"
	case CheckCorrespondence:
		return "correspondence"
	case CheckBounded:
		return "bounded"
	case CheckOrdered:
		return "ordered"
	case CheckPrecedence:
		return "precedence"
	case CheckReachable:
		return "reachable"
	case CheckForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Check is one condition inside a property. Only the fields relevant to its
// Kind are populated; the rest are left at zero value.
type Check struct {
	Kind CheckKind

	// invariant, action, forbidden
	Predicate *Predicate

	// local_invariant
	State string

	// bounded
	Track string
	Max   int64

	// ordered
	Event string
	By    string

	// correspondence
	Open  string
	Close []string

	// precedence
	Target   string
	Required string

	// reachable
	ReachTarget string

	// liveness
	Trigger string

	Span Span
}

// Predicate is a closure used by invariant/action/forbidden checks. Arity
// depends on the owning Check.Kind: invariant/forbidden take new tracks
// (plus new state for forbidden); action takes old and new tracks.
type Predicate struct {
	Closure
	InvariantFn func(tracks map[string]any) bool
	ActionFn    func(old, new map[string]any) bool
	ForbiddenFn func(state string, tracks map[string]any) bool
	LocalFn     func(message *Tag, tracks map[string]any) bool
}

// Property is a named group of checks.
type Property struct {
	Name   string
	Checks []Check
	Span   Span
}

// IR is the validated, canonical protocol representation consumed by both
// the runtime monitor and the TLA+ compiler.
type IR struct {
	ProtocolName string
	SourceFile   string

	Initial string
	Roles   []Role
	Tracks  []Track

	States map[string]*State

	// Anystate transitions apply in every non-terminal state.
	Anystate []Transition

	Properties []Property
}

// TrackNames returns track names in declaration order.
func (i *IR) TrackNames() []string {
	names := make([]string, len(i.Tracks))
	for idx, t := range i.Tracks {
		names[idx] = t.Name
	}
	return names
}

// TrackDefaults builds the initial tracks map from declared defaults.
func (i *IR) TrackDefaults() map[string]any {
	out := make(map[string]any, len(i.Tracks))
	for _, t := range i.Tracks {
		out[t.Name] = t.Default
	}
	return out
}

// StateNames returns all declared state names sorted lexically; callers
// needing declaration order should track it themselves at IR-build time.
func (i *IR) StateNames() []string {
	names := make([]string, 0, len(i.States))
	for name := range i.States {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
