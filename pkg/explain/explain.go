// Package explain turns a parsed TLC counterexample into a plain-English
// walkthrough for `check --explain`.
package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/accord/pkg/tlc"
)

// Explainer narrates a counterexample trace. Nil Result or nil
// Result.Violation is a programmer error; callers check for a violation
// before reaching for an Explainer.
type Explainer interface {
	Explain(ctx context.Context, protocolName string, result *tlc.Result) (string, error)
}

// Render is the shared deterministic fallback: a plain rendering of the
// trace with no narration, used by NoopExplainer and as the text
// GeminiExplainer hands to the model as grounding.
func Render(protocolName string, result *tlc.Result) string {
	if result == nil || result.Violation == nil {
		return fmt.Sprintf("%s: no violation found.", protocolName)
	}
	v := result.Violation
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s violated", protocolName, v.Kind)
	if v.Property != "" {
		fmt.Fprintf(&b, " (%s)", v.Property)
	}
	b.WriteString(".\n")
	for _, step := range v.Trace {
		fmt.Fprintf(&b, "State %d", step.Number)
		if step.Action != "" {
			fmt.Fprintf(&b, ": %s", step.Action)
		}
		b.WriteString("\n")
		for _, a := range step.Assignments {
			fmt.Fprintf(&b, "  %s = %s\n", a.Var, a.Value)
		}
	}
	return b.String()
}

// NoopExplainer returns Render's plain trace with no model call, used when
// no API key is configured (mirroring the teacher's nil-client fallback in
// pkg/index/llm.go).
type NoopExplainer struct{}

func (NoopExplainer) Explain(_ context.Context, protocolName string, result *tlc.Result) (string, error) {
	return Render(protocolName, result), nil
}
