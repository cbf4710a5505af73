package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/accord/pkg/ir"
)

func counterIR() *ir.IR {
	return &ir.IR{
		ProtocolName: "counter",
		Initial:      "ready",
		Tracks: []ir.Track{
			{Name: "n", Type: ir.Integer(), Default: int64(0)},
		},
		States: map[string]*ir.State{
			"ready": {
				Name: "ready",
				Transitions: []ir.Transition{
					{
						MessageTag:   "increment",
						Kind:         ir.Call,
						MessageTypes: []ir.T{ir.PosInteger()},
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
	}
}

func TestBuildResolvesSameState(t *testing.T) {
	table := Build(counterIR())
	tr, ok := table.Lookup("ready", "increment")
	require.True(t, ok)
	require.Equal(t, "ready", tr.Branches[0].NextState)
}

func TestBuildMarksTerminal(t *testing.T) {
	table := Build(counterIR())
	require.True(t, table.IsTerminal("stopped"))
	require.False(t, table.IsTerminal("ready"))
}

func TestBuildStateLocalShadowsAnystate(t *testing.T) {
	i := counterIR()
	i.Anystate = []ir.Transition{
		{MessageTag: "increment", Kind: ir.Cast},
		{MessageTag: "ping", Kind: ir.Cast},
	}
	table := Build(i)
	tr, ok := table.Lookup("ready", "increment")
	require.True(t, ok)
	require.Equal(t, ir.Call, tr.Kind, "state-local transition must win over anystate")

	_, ok = table.Lookup("ready", "ping")
	require.True(t, ok, "anystate transition should be visible where no local tag collides")
}

func TestValidTagsForInvalidMessageContext(t *testing.T) {
	table := Build(counterIR())
	tags := table.ValidTags("ready")
	require.ElementsMatch(t, []string{"increment", "stop"}, tags)
}
