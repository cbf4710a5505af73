package monitor

import "context"

// Server is the opaque upstream endpoint a monitor forwards call messages
// to. The monitor treats it as answering with a reply or failing to answer
// within the caller-supplied deadline — the transport itself (the
// synchronous request/reply pair and the fire-and-forget post) is out of
// scope per spec.md §1.
type Server interface {
	Handle(ctx context.Context, message any) (reply any, err error)
}

// ServerFunc adapts a function to Server.
type ServerFunc func(ctx context.Context, message any) (any, error)

func (f ServerFunc) Handle(ctx context.Context, message any) (any, error) { return f(ctx, message) }
