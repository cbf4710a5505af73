package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/accord/pkg/ir"
)

func emptyIR() *ir.IR {
	return &ir.IR{
		ProtocolName: "empty",
		Initial:      "ready",
		States: map[string]*ir.State{
			"ready": {Name: "ready"},
			"done":  {Name: "done", Terminal: true},
		},
	}
}

func TestValidateEmptyIRIsLegal(t *testing.T) {
	res := Validate(emptyIR())
	require.True(t, res.Accepted)
	require.Empty(t, Errors(res.Diags))
}

func TestValidateIdempotent(t *testing.T) {
	first := Validate(emptyIR())
	require.True(t, first.Accepted)
	second := Validate(first.IR)
	require.Equal(t, first.Accepted, second.Accepted)
	require.Equal(t, len(first.Diags), len(second.Diags))
}

func TestAnystateCollisionWithStateLocalTagRejected(t *testing.T) {
	i := &ir.IR{
		ProtocolName: "collide",
		Initial:      "ready",
		States: map[string]*ir.State{
			"ready": {
				Name: "ready",
				Transitions: []ir.Transition{
					{MessageTag: "ping", Kind: ir.Cast},
				},
			},
		},
		Anystate: []ir.Transition{
			{MessageTag: "ping", Kind: ir.Cast},
		},
	}
	res := Validate(i)
	require.False(t, res.Accepted)
	require.Equal(t, "determinism", res.FailedAt)
}

func TestCallTransitionRequiresBranches(t *testing.T) {
	i := &ir.IR{
		ProtocolName: "nobranch",
		Initial:      "ready",
		States: map[string]*ir.State{
			"ready": {
				Name: "ready",
				Transitions: []ir.Transition{
					{MessageTag: "get", Kind: ir.Call},
				},
			},
		},
	}
	res := Validate(i)
	require.False(t, res.Accepted)
	require.Equal(t, "structural", res.FailedAt)
}

func TestTerminalStateWithTransitionsRejected(t *testing.T) {
	i := &ir.IR{
		ProtocolName: "badterminal",
		Initial:      "ready",
		States: map[string]*ir.State{
			"ready": {Name: "ready"},
			"done": {
				Name:     "done",
				Terminal: true,
				Transitions: []ir.Transition{
					{MessageTag: "ping", Kind: ir.Cast},
				},
			},
		},
	}
	res := Validate(i)
	require.False(t, res.Accepted)
	require.Equal(t, "structural", res.FailedAt)
}

func TestUnreachableStateIsWarningNotError(t *testing.T) {
	i := &ir.IR{
		ProtocolName: "unreachable",
		Initial:      "ready",
		States: map[string]*ir.State{
			"ready":   {Name: "ready"},
			"orphan":  {Name: "orphan"},
		},
	}
	res := Validate(i)
	require.True(t, res.Accepted)
	require.NotEmpty(t, Warnings(res.Diags))
}

func TestPropertyReferencingUnknownTrackIsError(t *testing.T) {
	i := emptyIR()
	i.Properties = []ir.Property{
		{Name: "p", Checks: []ir.Check{{Kind: ir.CheckBounded, Track: "nope", Max: 2}}},
	}
	res := Validate(i)
	require.False(t, res.Accepted)
	require.Equal(t, "properties", res.FailedAt)
}

func TestPrecedenceRequiredResolvesAgainstStatesNotTags(t *testing.T) {
	i := emptyIR()
	i.Properties = []ir.Property{
		{Name: "p", Checks: []ir.Check{
			{Kind: ir.CheckPrecedence, Target: "done", Required: "ready"},
		}},
	}
	res := Validate(i)
	require.True(t, res.Accepted, "required names a declared state, not a message tag")
}

func TestPrecedenceRequiredNamingAMessageTagIsRejected(t *testing.T) {
	i := emptyIR()
	i.States["ready"].Transitions = []ir.Transition{
		{MessageTag: "ping", Kind: ir.Cast},
	}
	i.Properties = []ir.Property{
		{Name: "p", Checks: []ir.Check{
			{Kind: ir.CheckPrecedence, Target: "done", Required: "ping"},
		}},
	}
	res := Validate(i)
	require.False(t, res.Accepted, "required must be a state name, not a message tag")
	require.Equal(t, "properties", res.FailedAt)
}
