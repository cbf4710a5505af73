package tla

import "github.com/ternarybob/accord/pkg/ir"

// Diagnostic is a compile-time problem surfaced while lowering a guard,
// update, or property predicate to TLA+. Unlike validate.Diagnostic these
// are always hard errors: a protocol with an unlowerable expression cannot
// be emitted at all.
type Diagnostic struct {
	Message string
	Span    ir.Span
}

func diag(msg string, span ir.Span) Diagnostic { return Diagnostic{Message: msg, Span: span} }
