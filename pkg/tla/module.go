// Package tla compiles a validated IR into a TLA+ module and TLC
// configuration: state-space enumeration, action construction, property
// lowering, and textual emission, per spec.md §4.6.
package tla

import "github.com/ternarybob/accord/pkg/ir"

// Action is one TLA+ action definition, corresponding to a single
// (state, transition, branch) triple.
type Action struct {
	Name string

	// Params are the action's formal parameters, one per message
	// positional placeholder (empty slice for a nullary message).
	Params []string

	// ParamDomains is the finite TLA+ set expression each entry of Params
	// ranges over in the Next disjunction's existential quantifier, per
	// spec.md §4.6.1's "finite domains for each argument ... derived from
	// the declared types." Same length and order as Params.
	ParamDomains []string

	FromState string
	ToState   string

	// Guard is the lowered enabling condition text, always starting with
	// the pc = FromState conjunct. Argument domains are not part of it:
	// they bind Params in the Next disjunction's quantifier (ParamDomains).
	Guard string

	// Updates maps a track name to the lowered primed-assignment text for
	// that track under this action. Tracks absent from this map are left
	// UNCHANGED by the emitted action.
	Updates map[string]string

	// LogsHistory is true when this action must also append to msgLog.
	LogsHistory bool
	MessageTag  string

	Span ir.Span
}

// PropertyDef is one TLA+ property/invariant definition lowered from an IR
// Property.
type PropertyDef struct {
	Name string

	// CfgSection is which .cfg stanza this definition belongs under:
	// "INVARIANTS" or "PROPERTIES".
	CfgSection string

	// Formula is the body of `Name == <Formula>`.
	Formula string

	Span ir.Span
}

// Module is the compiled, emission-ready form of one protocol.
type Module struct {
	Name string

	Initial   string
	Tracks    []ir.Track
	StateList []string

	Actions    []Action
	Properties []PropertyDef

	// NeedsHistory is true when any property's lowering depends on the
	// msgLog history variable.
	NeedsHistory bool

	// NeedsIntBound is true when any action parameter's domain is an
	// integer-kind range, in which case EmitCfg emits a CONSTANTS stanza
	// binding IntBound to IntBound's value so the module stays finite and
	// TLC-enumerable.
	NeedsIntBound bool
	IntBound      int

	// SpanTable maps every emitted TLA+ identifier (action/property/
	// variable name) back to its originating source span, so a TLC
	// counterexample trace can be reported with source locations.
	SpanTable map[string]ir.Span
}
