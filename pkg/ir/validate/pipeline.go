package validate

import "github.com/ternarybob/accord/pkg/ir"

// Pass is one stage of the validation pipeline: IR -> IR | Errors, plus any
// advisory warnings, regardless of outcome.
type Pass func(*ir.IR) (*ir.IR, []Diagnostic)

// DefaultPipeline is the fixed pass order from spec.md §4.2. SpanRefinement
// runs last and only has an effect when the IR names a SourceFile.
var DefaultPipeline = []Pass{
	Structural,
	Types,
	Determinism,
	Reachability,
	Properties,
	SpanRefinement,
}

// Result is the outcome of running the pipeline: the (possibly refined) IR,
// all diagnostics collected across every pass that ran, and whether the
// pipeline accepted the IR.
type Result struct {
	IR       *ir.IR
	Diags    []Diagnostic
	Accepted bool
	FailedAt string
}

// Validate runs the fixed pipeline, short-circuiting on the first pass that
// produces a hard error. Warnings never abort; they accumulate across every
// pass that runs, including the one that fails.
func Validate(i *ir.IR) Result {
	return ValidateWith(i, DefaultPipeline)
}

// ValidateWith runs a caller-supplied pass sequence, for tests that want to
// exercise a single pass or a subset in isolation.
func ValidateWith(i *ir.IR, pipeline []Pass) Result {
	var all []Diagnostic
	current := i
	for _, pass := range pipeline {
		refined, diags := pass(current)
		all = append(all, diags...)
		if errs := Errors(diags); len(errs) > 0 {
			return Result{IR: refined, Diags: all, Accepted: false, FailedAt: errs[0].Pass}
		}
		current = refined
	}
	return Result{IR: current, Diags: all, Accepted: true}
}
