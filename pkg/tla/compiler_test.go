package tla

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/accord/pkg/ir"
)

func counterIR() *ir.IR {
	return &ir.IR{
		ProtocolName: "Counter",
		Initial:      "ready",
		Tracks: []ir.Track{
			{Name: "total", Type: ir.Integer(), Default: int64(0)},
		},
		States: map[string]*ir.State{
			"ready": {
				Name: "ready",
				Transitions: []ir.Transition{
					{
						MessageTag:   "increment",
						Kind:         ir.Call,
						MessageTypes: []ir.T{ir.PosInteger()},
						ArgNames:     []string{"n"},
						Update: &ir.Update{
							TrackExprs: map[string]ir.Expr{
								"total": ir.BinOp("+", ir.TrackRef("total"), ir.MessageField(0)),
							},
						},
						Branches: []ir.Branch{
							{ReplyType: ir.Tagged("ok", ir.Integer()), NextState: ir.SameState},
						},
					},
					{
						MessageTag: "stop",
						Kind:       ir.Call,
						Branches: []ir.Branch{
							{ReplyType: ir.Literal("stopped"), NextState: "stopped"},
						},
					},
				},
			},
			"stopped": {Name: "stopped", Terminal: true},
		},
		Properties: []ir.Property{
			{Name: "total_bounded", Checks: []ir.Check{
				{Kind: ir.CheckBounded, Track: "total", Max: 1000},
			}},
		},
	}
}

func TestCompileProducesOneActionPerBranch(t *testing.T) {
	m, diags := Compile(counterIR())
	require.Empty(t, diags)
	require.NotNil(t, m)
	require.Len(t, m.Actions, 2) // increment/ok-branch, stop/stopped-branch
	require.False(t, m.NeedsHistory)
}

func TestCompileResolvesSameStateSentinel(t *testing.T) {
	m, diags := Compile(counterIR())
	require.Empty(t, diags)
	for _, a := range m.Actions {
		if a.MessageTag == "increment" {
			require.Equal(t, "ready", a.ToState)
		}
	}
}

func TestCompileReportsUnlowerableGuard(t *testing.T) {
	bad := counterIR()
	tr := bad.States["ready"].Transitions[0]
	tr.Guard = &ir.Guard{Closure: ir.Closure{Syntax: ir.Opaque("hand-written closure, no AST")}}
	bad.States["ready"].Transitions[0] = tr

	m, diags := Compile(bad)
	require.Nil(t, m)
	require.NotEmpty(t, diags)
	require.Contains(t, diags[0].Message, "cannot be lowered")
}

func TestEmitTLAIsDeterministic(t *testing.T) {
	m, diags := Compile(counterIR())
	require.Empty(t, diags)
	first := EmitTLA(m)
	second := EmitTLA(m)
	require.Equal(t, first, second)
	require.Contains(t, first, "MODULE Counter")
	require.Contains(t, first, "VARIABLES pc, total")
	require.Contains(t, first, `Init ==`)
	require.Contains(t, first, `pc = "ready"`)
}

func TestEmitCfgListsInvariants(t *testing.T) {
	m, diags := Compile(counterIR())
	require.Empty(t, diags)
	cfg := EmitCfg(m)
	require.Contains(t, cfg, "SPECIFICATION Spec")
	require.Contains(t, cfg, "INVARIANTS")
	require.True(t, strings.Contains(cfg, "total_bounded_0"))
}

func TestFiniteDomainsReplaceInfiniteNat(t *testing.T) {
	m, diags := Compile(counterIR())
	require.Empty(t, diags)
	require.True(t, m.NeedsIntBound)

	text := EmitTLA(m)
	require.NotContains(t, text, "\\in Nat")
	require.Contains(t, text, "CONSTANTS IntBound")
	require.Contains(t, text, "n \\in 1..IntBound")

	cfg := EmitCfg(m)
	require.Contains(t, cfg, "CONSTANTS")
	require.Contains(t, cfg, "IntBound = 3")
}

func TestDomainForCoversDeclaredKinds(t *testing.T) {
	var needsIntBound bool

	require.Equal(t, "BOOLEAN", domainFor(ir.Boolean(), &needsIntBound))
	require.False(t, needsIntBound)

	require.Equal(t, "1..IntBound", domainFor(ir.PosInteger(), &needsIntBound))
	require.True(t, needsIntBound)

	needsIntBound = false
	require.Equal(t, `{"stopped"}`, domainFor(ir.Literal("stopped"), &needsIntBound))
	require.False(t, needsIntBound)

	require.Equal(t, `{"a", "b"}`, domainFor(ir.Union(ir.Literal("b"), ir.Literal("a")), &needsIntBound))

	// A bare atom/string carries no enumeration to derive a real domain
	// from; it still must come out finite.
	require.Equal(t, `{"v1", "v2"}`, domainFor(ir.Atom(), &needsIntBound))
}

func lockIRWithOrdering() *ir.IR {
	i := counterIR()
	i.ProtocolName = "OrderedCounter"
	i.Properties = append(i.Properties, ir.Property{
		Name: "monotonic_increments",
		Checks: []ir.Check{
			{Kind: ir.CheckOrdered, Event: "increment", By: "n"},
		},
	})
	return i
}

func TestNeedsHistoryTriggersMsgLog(t *testing.T) {
	m, diags := Compile(lockIRWithOrdering())
	require.Empty(t, diags)
	require.True(t, m.NeedsHistory)
	text := EmitTLA(m)
	require.Contains(t, text, "msgLog = <<>>")
	require.Contains(t, text, "msgLog' = Append")
}
