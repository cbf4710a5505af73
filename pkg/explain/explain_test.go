package explain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/accord/pkg/tlc"
)

func sampleResult() *tlc.Result {
	return &tlc.Result{
		Ok: false,
		Violation: &tlc.Violation{
			Kind:     tlc.KindInvariant,
			Property: "fence_bounded_0",
			Trace: []tlc.TraceEntry{
				{Number: 1, Action: "Initial predicate", Assignments: []tlc.Assignment{{Var: "fence", Value: "0"}}},
				{Number: 2, Action: "unlocked_acquire_0_0", Assignments: []tlc.Assignment{{Var: "fence", Value: "3"}}},
			},
		},
	}
}

func TestRenderIncludesPropertyAndTrace(t *testing.T) {
	out := Render("lock", sampleResult())
	require.Contains(t, out, "fence_bounded_0")
	require.Contains(t, out, "unlocked_acquire_0_0")
	require.Contains(t, out, "fence = 3")
}

func TestRenderNoViolation(t *testing.T) {
	out := Render("lock", &tlc.Result{Ok: true})
	require.Contains(t, out, "no violation found")
}

func TestNoopExplainerReturnsPlainRender(t *testing.T) {
	out, err := NoopExplainer{}.Explain(context.Background(), "lock", sampleResult())
	require.NoError(t, err)
	require.Equal(t, Render("lock", sampleResult()), out)
}

func TestNewGeminiExplainerRequiresAPIKey(t *testing.T) {
	require.Nil(t, NewGeminiExplainer(GeminiConfig{}))
}

func TestGeminiExplainerNilReceiverFallsBackToRender(t *testing.T) {
	var e *GeminiExplainer
	out, err := e.Explain(context.Background(), "lock", sampleResult())
	require.NoError(t, err)
	require.Equal(t, Render("lock", sampleResult()), out)
}
