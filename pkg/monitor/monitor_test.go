package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/accord/pkg/ir"
)

// counterContract mirrors spec.md §8 scenario 1-3: states {ready, stopped},
// increment/stop from ready, a running total track.
func counterContract() *ir.IR {
	total := int64(0)
	updateIncrement := func(message *ir.Tag, reply any, tracks map[string]any) map[string]any {
		n := message.Args[0].(int64)
		out := map[string]any{"total": tracks["total"].(int64) + n}
		return out
	}
	return &ir.IR{
		ProtocolName: "counter",
		Initial:      "ready",
		Tracks: []ir.Track{
			{Name: "total", Type: ir.Integer(), Default: total},
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
						Update:       &ir.Update{Fn: updateIncrement},
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

// precedenceContract has three states (ready -> running -> stopped) and a
// precedence property requiring "running" to have been visited before
// "stopped" is reached, per spec.md §4.2 pass 5: precedence.{target,
// required} are both state names.
func precedenceContract() *ir.IR {
	return &ir.IR{
		ProtocolName: "precedence",
		Initial:      "ready",
		States: map[string]*ir.State{
			"ready": {
				Name: "ready",
				Transitions: []ir.Transition{
					{MessageTag: "start", Kind: ir.Call, Branches: []ir.Branch{
						{ReplyType: ir.Literal("started"), NextState: "running"},
					}},
					{MessageTag: "stop", Kind: ir.Call, Branches: []ir.Branch{
						{ReplyType: ir.Literal("stopped"), NextState: "stopped"},
					}},
				},
			},
			"running": {
				Name: "running",
				Transitions: []ir.Transition{
					{MessageTag: "stop", Kind: ir.Call, Branches: []ir.Branch{
						{ReplyType: ir.Literal("stopped"), NextState: "stopped"},
					}},
				},
			},
			"stopped": {Name: "stopped", Terminal: true},
		},
		Properties: []ir.Property{
			{Name: "must_run_before_stop", Checks: []ir.Check{
				{Kind: ir.CheckPrecedence, Target: "stopped", Required: "running"},
			}},
		},
	}
}

func TestPrecedenceSatisfiedWhenRequiredStateWasVisited(t *testing.T) {
	var violations []*Violation
	sink := func(v *Violation) { violations = append(violations, v) }
	m := New(precedenceContract(), echoServer(func(message any) any {
		switch message.(*ir.Tag).Name {
		case "start":
			return "started"
		default:
			return "stopped"
		}
	}), Handler(sink))

	_, v := m.Call(&ir.Tag{Name: "start"}, time.Second)
	require.Nil(t, v)
	_, v = m.Call(&ir.Tag{Name: "stop"}, time.Second)
	require.Nil(t, v)
	require.Empty(t, violations, "running was visited before stopped, precedence must hold")
}

func TestPrecedenceViolatedWhenRequiredStateWasSkipped(t *testing.T) {
	var violations []*Violation
	sink := func(v *Violation) { violations = append(violations, v) }
	m := New(precedenceContract(), echoServer(func(message any) any {
		return "stopped"
	}), Handler(sink))

	_, v := m.Call(&ir.Tag{Name: "stop"}, time.Second)
	require.Nil(t, v)
	require.Len(t, violations, 1)
	require.Equal(t, KindPrecedence, violations[0].Kind)
}

func echoServer(reply func(message any) any) Server {
	return ServerFunc(func(ctx context.Context, message any) (any, error) {
		return reply(message), nil
	})
}

func TestCounterHappyPath(t *testing.T) {
	server := echoServer(func(message any) any {
		tag := message.(*ir.Tag)
		switch tag.Name {
		case "increment":
			n := tag.Args[0].(int64)
			return &ir.Tag{Name: "ok", Args: []any{n}}
		case "stop":
			return "stopped"
		}
		return nil
	})
	m := New(counterContract(), server, Raise())

	r, v := m.Call(&ir.Tag{Name: "increment", Args: []any{int64(3)}}, time.Second)
	require.Nil(t, v)
	require.Equal(t, &ir.Tag{Name: "ok", Args: []any{int64(3)}}, r)

	r, v = m.Call(&ir.Tag{Name: "increment", Args: []any{int64(4)}}, time.Second)
	require.Nil(t, v)
	require.Equal(t, int64(4), r.(*ir.Tag).Args[0])
	require.Equal(t, int64(7), m.Tracks()["total"])

	r, v = m.Call("stop", time.Second)
	require.Nil(t, v)
	require.Equal(t, "stopped", r)

	_, v = m.Call("get", time.Second)
	require.NotNil(t, v)
	require.Equal(t, KindSessionEnded, v.Kind)
	require.Equal(t, BlameClient, v.Blame)
}

func TestCounterClientTypeError(t *testing.T) {
	server := echoServer(func(message any) any { return nil })
	m := New(counterContract(), server, Raise())

	_, v := m.Call(&ir.Tag{Name: "increment", Args: []any{int64(0)}}, time.Second)
	require.NotNil(t, v)
	require.Equal(t, KindArgumentType, v.Kind)
	require.Equal(t, BlameClient, v.Blame)
	require.Equal(t, 0, v.Context["position"])
}

func TestCounterServerWrongTypeReply(t *testing.T) {
	server := echoServer(func(message any) any { return "bogus" })
	m := New(counterContract(), server, Raise())

	_, v := m.Call(&ir.Tag{Name: "increment", Args: []any{int64(5)}}, time.Second)
	require.NotNil(t, v)
	require.Equal(t, KindInvalidReply, v.Kind)
	require.Equal(t, BlameServer, v.Blame)
	require.Equal(t, "ready", m.State())
	require.Equal(t, int64(0), m.Tracks()["total"])
}

// lockContract mirrors spec.md §8 scenario 4-5.
func lockContract() *ir.IR {
	// acquireUpdate trusts the server-reported fencing token in the reply
	// rather than incrementing locally, so a buggy server that reuses or
	// lowers a token is directly observable as an action-check violation.
	acquireUpdate := func(message *ir.Tag, reply any, tracks map[string]any) map[string]any {
		r := reply.(*ir.Tag)
		if r.Name != "ok" {
			return tracks
		}
		return map[string]any{
			"holder": message.Args[0],
			"fence":  r.Args[0].(int64),
		}
	}
	releaseUpdate := func(message *ir.Tag, reply any, tracks map[string]any) map[string]any {
		return map[string]any{"holder": nil, "fence": tracks["fence"]}
	}
	lockedInvariant := &ir.Predicate{LocalFn: func(message *ir.Tag, tracks map[string]any) bool {
		return tracks["holder"] != nil
	}}
	fenceMonotonic := &ir.Predicate{ActionFn: func(old, new map[string]any) bool {
		return new["fence"].(int64) >= old["fence"].(int64)
	}}
	return &ir.IR{
		ProtocolName: "lock",
		Initial:      "unlocked",
		Tracks: []ir.Track{
			{Name: "holder", Type: ir.Union(ir.Term(), ir.Literal(nil)), Default: nil},
			{Name: "fence", Type: ir.NonNegInteger(), Default: int64(0)},
		},
		States: map[string]*ir.State{
			"unlocked": {
				Name: "unlocked",
				Transitions: []ir.Transition{
					{
						MessageTag:   "acquire",
						Kind:         ir.Call,
						MessageTypes: []ir.T{ir.Term()},
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
						MessageTag:   "acquire",
						Kind:         ir.Call,
						MessageTypes: []ir.T{ir.Term()},
						Branches: []ir.Branch{
							{ReplyType: ir.Tagged("error", ir.Atom()), NextState: ir.SameState},
						},
					},
					{
						MessageTag:   "release",
						Kind:         ir.Call,
						MessageTypes: []ir.T{ir.Integer()},
						Update:       &ir.Update{Fn: releaseUpdate},
						Branches: []ir.Branch{
							{ReplyType: ir.Literal("ok"), NextState: "unlocked"},
						},
					},
				},
			},
		},
		Properties: []ir.Property{
			{Name: "mutual_exclusion", Checks: []ir.Check{
				{Kind: ir.CheckAction, Predicate: fenceMonotonic},
				{Kind: ir.CheckLocalInvariant, State: "locked", Predicate: lockedInvariant},
			}},
		},
	}
}

func TestLockMutualExclusion(t *testing.T) {
	server := echoServer(func(message any) any {
		tag := message.(*ir.Tag)
		switch tag.Name {
		case "acquire":
			return &ir.Tag{Name: "error", Args: []any{"already_held"}}
		case "release":
			return "ok"
		}
		return nil
	})
	m := New(lockContract(), server, Raise())

	// First acquire: force an "ok" reply for the initial caller by using a
	// dedicated server closure instead of the shared one above.
	okServer := echoServer(func(message any) any {
		return &ir.Tag{Name: "ok", Args: []any{int64(1)}}
	})
	m = New(lockContract(), okServer, Raise())

	r, v := m.Call(&ir.Tag{Name: "acquire", Args: []any{"A"}}, time.Second)
	require.Nil(t, v)
	require.Equal(t, int64(1), r.(*ir.Tag).Args[0])
	require.Equal(t, "locked", m.State())
	require.Equal(t, "A", m.Tracks()["holder"])
	require.Equal(t, int64(1), m.Tracks()["fence"])

	m.server = server // swap in the "already held" responder
	r, v = m.Call(&ir.Tag{Name: "acquire", Args: []any{"B"}}, time.Second)
	require.Nil(t, v)
	require.Equal(t, "already_held", r.(*ir.Tag).Args[0])
	require.Equal(t, "locked", m.State())

	r, v = m.Call(&ir.Tag{Name: "release", Args: []any{int64(1)}}, time.Second)
	require.Nil(t, v)
	require.Equal(t, "ok", r)
	require.Equal(t, "unlocked", m.State())
	require.Nil(t, m.Tracks()["holder"])
}

func TestLockPropertyViolation(t *testing.T) {
	var violations []*Violation
	calls := 0
	server := ServerFunc(func(ctx context.Context, message any) (any, error) {
		tag := message.(*ir.Tag)
		switch tag.Name {
		case "acquire":
			calls++
			if calls == 1 {
				return &ir.Tag{Name: "ok", Args: []any{int64(5)}}, nil
			}
			// buggy: a correct server must only ever hand out increasing
			// fencing tokens.
			return &ir.Tag{Name: "ok", Args: []any{int64(2)}}, nil
		case "release":
			return "ok", nil
		}
		return nil, nil
	})
	m := New(lockContract(), server, Handler(func(v *Violation) {
		violations = append(violations, v)
	}))

	_, v := m.Call(&ir.Tag{Name: "acquire", Args: []any{"A"}}, time.Second)
	require.Nil(t, v)
	require.Equal(t, int64(5), m.Tracks()["fence"])

	_, v = m.Call(&ir.Tag{Name: "release", Args: []any{int64(5)}}, time.Second)
	require.Nil(t, v)
	require.Equal(t, "unlocked", m.State())

	r, v := m.Call(&ir.Tag{Name: "acquire", Args: []any{"B"}}, time.Second)
	require.Nil(t, v, "property violations do not roll back the call's own outcome")
	require.Equal(t, int64(2), r.(*ir.Tag).Args[0])
	require.Equal(t, "locked", m.State(), "transition still commits despite the property violation")
	require.NotEmpty(t, violations)
	require.Equal(t, BlameProperty, violations[0].Blame)
}

func TestTimeoutZeroNeverInvokesServer(t *testing.T) {
	called := false
	server := ServerFunc(func(ctx context.Context, message any) (any, error) {
		called = true
		return &ir.Tag{Name: "ok", Args: []any{int64(1)}}, nil
	})
	m := New(counterContract(), server, Raise())

	_, v := m.Call(&ir.Tag{Name: "increment", Args: []any{int64(1)}}, 0)
	require.NotNil(t, v)
	require.Equal(t, KindTimeout, v.Kind)
	require.Equal(t, BlameServer, v.Blame)
	require.False(t, called)
}

func TestCastNeverReturnsAValue(t *testing.T) {
	m := New(counterContract(), echoServer(func(message any) any { return nil }), Raise())
	m.Cast("stop") // stop is a call-only tag here: expect invalid_message, dropped
	require.Equal(t, "ready", m.State())
}
