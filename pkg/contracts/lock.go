package contracts

import "github.com/ternarybob/accord/pkg/ir"

func init() {
	Global().Register("lock", Lock())
}

// Lock is a fencing-token lock: a client acquires a monotonic token from
// the server, holds it, then releases. It is the same shape used to
// exercise pkg/monitor and pkg/exercise in their own tests, registered
// here as the one built-in example contract `accord check`/`print-tla`
// can run against out of the box.
func Lock() *ir.IR {
	acquireGuard := func(message *ir.Tag, tracks map[string]any) bool {
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
		Properties: []ir.Property{
			{
				Name: "fence_bounded",
				Checks: []ir.Check{
					{
						Kind: ir.CheckInvariant,
						Predicate: &ir.Predicate{
							Closure: ir.Closure{
								Name:   "fence_bounded",
								Syntax: ir.BinOp("<=", ir.TrackRef("fence"), ir.Lit(int64(1000))),
							},
							InvariantFn: func(tracks map[string]any) bool {
								fence, _ := tracks["fence"].(int64)
								return fence <= 1000
							},
						},
					},
				},
			},
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
