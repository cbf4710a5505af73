package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/accord/pkg/dispatch"
	"github.com/ternarybob/accord/pkg/ir"
)

// Monitor is a single-session state machine proxying between exactly one
// logical client and one upstream server endpoint. Its internal state is
// (protocol_state, tracks, pending_request_descriptor?); the pending
// request never outlives a single Call, so it is not modeled as a field —
// Call owns its own forwarding goroutine for the duration of one request.
type Monitor struct {
	mu sync.Mutex

	id      string
	ir      *ir.IR
	dispatch *dispatch.Table
	server  Server
	policy  FailurePolicy

	state   string
	tracks  map[string]any
	argNames map[string][]string

	history    *History
	corrStacks map[string][]any

	logs      []loggedEvent
	observers []func(Event)
}

type loggedEvent struct {
	At   time.Time
	Note string
}

// EventKind classifies a session event delivered to an Observer.
type EventKind string

const (
	EventCall      EventKind = "call"
	EventCast      EventKind = "cast"
	EventViolation EventKind = "violation"
	EventCommit    EventKind = "commit"
)

// Event is a single observable occurrence within a monitor session: a
// dispatched call or cast, a detected violation, or a committed state
// transition. pkg/monitor/observe.go fans these out over SSE; tests and
// other embedders can use Observe directly without an HTTP server.
type Event struct {
	Kind      EventKind
	At        time.Time
	State     string
	Message   any
	Reply     any
	Violation *Violation
}

// Observe registers fn to receive every Event emitted by the monitor from
// this point forward. The returned func unsubscribes it. fn is called
// synchronously while the monitor's lock is held, so it must not call back
// into the monitor; do any slow work (e.g. writing to a channel) async.
func (m *Monitor) Observe(fn func(Event)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
	idx := len(m.observers) - 1
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if idx < len(m.observers) {
			m.observers[idx] = nil
		}
	}
}

func (m *Monitor) emit(e Event) {
	e.At = time.Now()
	for _, fn := range m.observers {
		if fn != nil {
			fn(e)
		}
	}
}

// New creates a monitor over a validated IR. server is the upstream
// endpoint; policy controls violation delivery (default: Raise()).
func New(validated *ir.IR, server Server, policy FailurePolicy) *Monitor {
	table := dispatch.Build(validated)
	argNames := map[string][]string{}
	for _, st := range validated.States {
		for _, tr := range st.Transitions {
			argNames[tr.MessageTag] = tr.ArgNames
		}
	}
	for _, tr := range validated.Anystate {
		argNames[tr.MessageTag] = tr.ArgNames
	}
	return &Monitor{
		id:         uuid.NewString(),
		ir:         validated,
		dispatch:   table,
		server:     server,
		policy:     policy,
		state:      validated.Initial,
		tracks:     validated.TrackDefaults(),
		argNames:   argNames,
		history:    &History{},
		corrStacks: map[string][]any{},
	}
}

// ID is the monitor session identifier.
func (m *Monitor) ID() string { return m.id }

// State returns the current protocol state.
func (m *Monitor) State() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// History returns the recent transition log, most-recent-last.
func (m *Monitor) History() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.Entries()
}

// Tracks returns a snapshot of the current track values.
func (m *Monitor) Tracks() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]any, len(m.tracks))
	for k, v := range m.tracks {
		out[k] = v
	}
	return out
}

// Call performs a synchronous request expecting a reply. It returns either
// the server's reply value or a violation record — never both, and never a
// Go error for contract violations (a violation IS the error channel here;
// see SPEC_FULL.md's ambient-stack note on error vs. diagnostic).
func (m *Monitor) Call(message any, timeout time.Duration) (any, *Violation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emit(Event{Kind: EventCall, State: m.state, Message: message})
	reply, v := m.process(message, ir.Call, timeout)
	if v != nil {
		m.emit(Event{Kind: EventViolation, State: v.State, Message: message, Violation: v})
	}
	return reply, v
}

// Cast is fire-and-forget. Per spec.md §4.4, a cast never returns a
// violation — failures are delivered exclusively through the failure
// policy.
func (m *Monitor) Cast(message any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emit(Event{Kind: EventCast, State: m.state, Message: message})
	m.process(message, ir.Cast, 0)
}

func (m *Monitor) process(message any, kind ir.TransitionKind, timeout time.Duration) (any, *Violation) {
	state := m.state

	if m.dispatch.IsTerminal(state) {
		v := violation(BlameClient, KindSessionEnded, state, message, nil)
		return m.deliver(kind, v)
	}

	tag, ok := ir.MessageTag(message)
	if !ok {
		v := violation(BlameClient, KindInvalidMessage, state, message, map[string]any{
			"expected": m.dispatch.ValidTags(state),
		})
		return m.deliver(kind, v)
	}

	tr, ok := m.dispatch.Lookup(state, tag)
	if !ok {
		v := violation(BlameClient, KindInvalidMessage, state, message, map[string]any{
			"expected": m.dispatch.ValidTags(state),
		})
		return m.deliver(kind, v)
	}
	if tr.Kind != kind {
		v := violation(BlameClient, KindInvalidMessage, state, message, map[string]any{
			"expected_kind": tr.Kind.String(),
			"actual_kind":   kind.String(),
		})
		return m.deliver(kind, v)
	}

	args := ir.MessageArgs(message)
	if len(args) != len(tr.MessageTypes) {
		v := violation(BlameClient, KindArgumentType, state, message, map[string]any{
			"position":      len(args),
			"expected_type": "arity mismatch",
		})
		return m.deliver(kind, v)
	}
	for i, t := range tr.MessageTypes {
		if !ir.Conforms(args[i], t) {
			v := violation(BlameClient, KindArgumentType, state, message, map[string]any{
				"position":      i,
				"actual_value":  args[i],
				"expected_type": ir.Render(t),
			})
			return m.deliver(kind, v)
		}
	}

	if tr.Guard != nil && tr.Guard.Fn != nil {
		if !tr.Guard.Fn(asTag(message), m.tracks) {
			v := violation(BlameClient, KindGuardFailed, state, message, nil)
			return m.deliver(kind, v)
		}
	}

	if kind == ir.Call {
		return m.processCall(state, message, tr, timeout)
	}
	return m.processCast(state, message, tr)
}

func (m *Monitor) processCall(state string, message any, tr *ir.Transition, timeout time.Duration) (any, *Violation) {
	reply, ok := m.forward(message, timeout)
	if !ok {
		v := violation(BlameServer, KindTimeout, state, message, map[string]any{
			"timeout_ms": timeout.Milliseconds(),
		})
		return m.deliver(ir.Call, v)
	}

	var chosen *ir.Branch
	for i := range tr.Branches {
		b := &tr.Branches[i]
		if !ir.Conforms(reply, b.ReplyType) {
			continue
		}
		if b.Constraint != nil && b.Constraint.Fn != nil && !b.Constraint.Fn(reply) {
			continue
		}
		chosen = b
		break
	}
	if chosen == nil {
		valid := make([]string, len(tr.Branches))
		for i, b := range tr.Branches {
			valid[i] = ir.Render(b.ReplyType)
		}
		v := violation(BlameServer, KindInvalidReply, state, message, map[string]any{
			"valid_replies": valid,
		})
		v.Reply = reply
		return m.deliver(ir.Call, v)
	}

	newTracks, invErr := m.applyUpdate(tr, message, reply)
	if invErr != nil {
		invErr.State = state
		invErr.Message = message
		invErr.Reply = reply
		return m.deliver(ir.Call, invErr)
	}

	next := chosen.NextState
	violations := m.evalProperties(evalContext{
		old: m.tracks, new: newTracks, fromSt: state, toSt: next,
		message: asTag(message), reply: reply, history: m.history, corrStacks: m.corrStacks,
	})
	m.commit(next, newTracks, message, reply)
	m.notifyProperty(violations)

	return reply, nil
}

func (m *Monitor) processCast(state string, message any, tr *ir.Transition) (any, *Violation) {
	next := state
	if len(tr.Branches) > 0 {
		next = tr.Branches[0].NextState
	}

	newTracks, invErr := m.applyUpdate(tr, message, nil)
	if invErr != nil {
		invErr.State = state
		invErr.Message = message
		return m.deliver(ir.Cast, invErr)
	}

	violations := m.evalProperties(evalContext{
		old: m.tracks, new: newTracks, fromSt: state, toSt: next,
		message: asTag(message), reply: nil, history: m.history, corrStacks: m.corrStacks,
	})
	m.commit(next, newTracks, message, nil)
	m.notifyProperty(violations)

	return nil, nil
}

func (m *Monitor) applyUpdate(tr *ir.Transition, message any, reply any) (map[string]any, *Violation) {
	if tr.Update == nil || tr.Update.Fn == nil {
		return m.tracks, nil
	}
	updated := tr.Update.Fn(asTag(message), reply, m.tracks)
	for _, tk := range m.ir.Tracks {
		v, ok := updated[tk.Name]
		if !ok {
			continue
		}
		if !ir.Conforms(v, tk.Type) {
			return nil, violation(BlameServer, KindInvariantViolated, "", message, map[string]any{
				"track":         tk.Name,
				"actual_value":  v,
				"expected_type": ir.Render(tk.Type),
			})
		}
	}
	return updated, nil
}

func (m *Monitor) commit(next string, tracks map[string]any, message any, reply any) {
	tag, _ := ir.MessageTag(message)
	m.state = next
	m.tracks = tracks
	m.history.Append(Entry{State: next, Tag: tag, Reply: reply, Fields: fieldsFor(m, tag, ir.MessageArgs(message))})
	m.emit(Event{Kind: EventCommit, State: next, Message: message, Reply: reply})
}

// forward sends message to the upstream server, returning (reply, true) on
// a reply within timeout, or (nil, false) on timeout. A non-positive
// timeout surfaces timeout without ever invoking the server's reply path,
// per spec.md §8's boundary behavior.
func (m *Monitor) forward(message any, timeout time.Duration) (any, bool) {
	if timeout <= 0 {
		return nil, false
	}
	type result struct {
		reply any
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		r, err := m.server.Handle(ctx, message)
		ch <- result{r, err}
	}()
	select {
	case res := <-ch:
		if res.err != nil {
			return nil, false
		}
		return res.reply, true
	case <-time.After(timeout):
		return nil, false
	}
}

// deliver routes a detected violation through the configured failure
// policy. For calls, it always returns the violation as the result (the
// monitor never transitions on a client/server-blamed violation). For
// casts, the violation is never returned — only policy-delivered.
func (m *Monitor) deliver(kind ir.TransitionKind, v *Violation) (any, *Violation) {
	switch m.policy.Mode {
	case PolicyHandler:
		if m.policy.Sink != nil {
			m.policy.Sink(v)
		}
	case PolicyLog:
		m.logs = append(m.logs, loggedEvent{At: time.Now(), Note: v.Error()})
	case PolicyRaise:
		if kind == ir.Cast {
			m.logs = append(m.logs, loggedEvent{At: time.Now(), Note: v.Error()})
		}
	}
	if kind == ir.Cast {
		m.emit(Event{Kind: EventViolation, State: v.State, Message: v.Message, Violation: v})
		return nil, nil
	}
	return nil, v
}

func (m *Monitor) notifyProperty(violations []*Violation) {
	for _, v := range violations {
		switch m.policy.Mode {
		case PolicyHandler:
			if m.policy.Sink != nil {
				m.policy.Sink(v)
			}
		default:
			m.logs = append(m.logs, loggedEvent{At: time.Now(), Note: v.Error()})
		}
		m.emit(Event{Kind: EventViolation, State: v.State, Violation: v})
	}
}

func asTag(message any) *ir.Tag {
	switch v := message.(type) {
	case *ir.Tag:
		return v
	case string:
		return &ir.Tag{Name: v}
	default:
		return nil
	}
}
