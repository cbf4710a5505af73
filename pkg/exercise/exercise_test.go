package exercise

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/accord/pkg/ir"
	"github.com/ternarybob/accord/pkg/monitor"
)

// lockContract mirrors the fencing-token lock used in pkg/monitor's own
// tests: states {unlocked, locked}, a guarded acquire call, a release cast.
func lockContract() *ir.IR {
	acquireGuard := func(message *ir.Tag, tracks map[string]any) bool {
		// Fencing tokens above 500 are rejected outright, independent of
		// the current fence value, so both a satisfying and a failing
		// sample are reachable from the fixed [1,1000] sampling range.
		return message.Args[0].(int64) <= 500
	}
	acquireUpdate := func(message *ir.Tag, reply any, tracks map[string]any) map[string]any {
		return map[string]any{"fence": reply.(*ir.Tag).Args[0].(int64), "holder": "client"}
	}
	releaseUpdate := func(message *ir.Tag, reply any, tracks map[string]any) map[string]any {
		return map[string]any{"fence": tracks["fence"], "holder": ""}
	}
	return &ir.IR{
		ProtocolName: "lock",
		Initial:      "unlocked",
		Tracks: []ir.Track{
			{Name: "fence", Type: ir.Integer(), Default: int64(0)},
			{Name: "holder", Type: ir.StringT(), Default: ""},
		},
		States: map[string]*ir.State{
			"unlocked": {
				Name: "unlocked",
				Transitions: []ir.Transition{
					{
						MessageTag:   "acquire",
						Kind:         ir.Call,
						MessageTypes: []ir.T{ir.PosInteger()},
						ArgNames:     []string{"token"},
						Guard:        &ir.Guard{Fn: acquireGuard},
						Update:       &ir.Update{Fn: acquireUpdate},
						Branches: []ir.Branch{
							{ReplyType: ir.Tagged("ok", ir.Integer()), NextState: "locked"},
						},
					},
				},
			},
			"locked": {
				Name: "locked",
				Transitions: []ir.Transition{
					{
						MessageTag: "release",
						Kind:       ir.Cast,
						Update:     &ir.Update{Fn: releaseUpdate},
						Branches: []ir.Branch{
							{NextState: "unlocked"},
						},
					},
				},
			},
		},
	}
}

func lockServer() monitor.Server {
	next := int64(1)
	return monitor.ServerFunc(func(ctx context.Context, message any) (any, error) {
		tag := message.(*ir.Tag)
		if tag.Name == "acquire" {
			token := tag.Args[0].(int64)
			if token > next {
				next = token
			} else {
				next++
			}
			return &ir.Tag{Name: "ok", Args: []any{next}}, nil
		}
		return nil, nil
	})
}

func TestRunProducesBoundedPassingSequence(t *testing.T) {
	result := Run(Config{
		IR:       lockContract(),
		Server:   lockServer(),
		MaxSteps: 30,
		Seed:     1,
	})
	require.NotEmpty(t, result.Steps)
	for _, step := range result.Steps {
		require.Truef(t, step.Passed, "step %d (%s %s) expected %+v got %+v",
			step.Index, step.Command, step.Tag, step.Expected, step.Actual)
	}
}

func TestRunIsDeterministicForASeed(t *testing.T) {
	cfg := Config{IR: lockContract(), Server: lockServer(), MaxSteps: 20, Seed: 42}
	first := Run(cfg)
	cfg.Server = lockServer()
	second := Run(cfg)

	require.Equal(t, len(first.Steps), len(second.Steps))
	for i := range first.Steps {
		require.Equal(t, first.Steps[i].Command, second.Steps[i].Command)
		require.Equal(t, first.Steps[i].Tag, second.Steps[i].Tag)
	}
}

func TestNewGeneratorCollectsDeclaredTags(t *testing.T) {
	gen := NewGenerator(7, lockContract())
	require.NotEmpty(t, gen.tags)
}

func TestCollectorInitDrainFilterByBlame(t *testing.T) {
	c := NewCollector()
	c.Init()
	c.Add(&monitor.Violation{Blame: monitor.BlameClient, Kind: monitor.KindGuardFailed})
	c.Add(&monitor.Violation{Blame: monitor.BlameProperty, Kind: monitor.KindInvariantViolated})

	propOnly := c.FilterByBlame(monitor.BlameProperty)
	require.Len(t, propOnly, 1)
	require.Equal(t, monitor.KindInvariantViolated, propOnly[0].Violation.Kind)

	drained := c.Drain()
	require.Len(t, drained, 2)
	require.Empty(t, c.Drain())
}

func TestMatchesHonorsEitherOutcome(t *testing.T) {
	expected := eitherOutcome()
	require.True(t, matches(expected, okOutcome()))
	require.True(t, matches(expected, violationOutcome(monitor.BlameClient, monitor.KindInvalidMessage)))
}
