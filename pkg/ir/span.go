// Package ir defines Accord's intermediate representation: the typed state
// machine a protocol contract compiles down to before it reaches either the
// runtime monitor or the TLA+ compiler.
package ir

// Span is a reference back to the source text a contract was built from.
// Surface-DSL front ends populate this; the core never constructs one from
// scratch beyond the coarse line/column a builder call site supplies.
type Span struct {
	File   string
	Line   int
	Column int
	// StartByte/EndByte are filled in by the optional span-refinement pass
	// once a source file is available; zero value means "unrefined".
	StartByte int
	EndByte   int
}

// IsZero reports whether the span carries no location information.
func (s Span) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}
