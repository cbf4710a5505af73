package exercise

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/accord/pkg/dispatch"
	"github.com/ternarybob/accord/pkg/ir"
	"github.com/ternarybob/accord/pkg/monitor"
)

// Stoppable is implemented by servers with teardown work to do; Run calls
// it with a bounded context on every exit path, matching spec.md §5's
// scoped-acquisition guarantee.
type Stoppable interface {
	Stop(ctx context.Context) error
}

// Config parameterizes one exerciser run.
type Config struct {
	IR     *ir.IR
	Server monitor.Server

	// MaxSteps bounds the command sequence length; default 50.
	MaxSteps int
	// Seed drives the Generator; identical Config+Seed replays identically.
	Seed int64
	// CallTimeout is used for every generated call command; default 50ms.
	CallTimeout time.Duration
	// StopTimeout bounds the server teardown call; default 2s.
	StopTimeout time.Duration
	// Collector receives every violation the monitor delivers during the
	// run (Result.PropertyViolations is its property-blamed subset);
	// defaults to the process-wide Global().
	Collector *Collector
}

// Result is one run's full record.
type Result struct {
	Steps              []Step
	Passed             bool
	FailingStep        *Step
	PropertyViolations []Entry
}

// Run drives a fresh monitor over cfg.Server through a generated command
// sequence. It owns both the monitor and cfg.Server for the run's duration
// and tears the server down on every exit path (success, failure, or a
// command sequence that runs out of steps).
func Run(cfg Config) *Result {
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 50
	}
	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 50 * time.Millisecond
	}
	stopTimeout := cfg.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = 2 * time.Second
	}
	collector := cfg.Collector
	if collector == nil {
		collector = Global()
	}

	box := &captureBox{}
	sink := func(v *monitor.Violation) {
		collector.Add(v)
		box.capture(v)
	}

	mon := monitor.New(cfg.IR, cfg.Server, monitor.Handler(sink))
	table := dispatch.Build(cfg.IR)
	gen := NewGenerator(cfg.Seed, cfg.IR)

	defer stopServer(cfg.Server, stopTimeout)

	collector.Init()

	result := &Result{}
	for idx := 0; idx < maxSteps; idx++ {
		state := mon.State()
		if table.IsTerminal(state) {
			break
		}

		kind := gen.next(table, state)
		tag, msg, ok := gen.build(table, state, mon.Tracks(), kind)
		if !ok {
			continue
		}

		_, trKind := transitionKind(table, gen, state, tag)
		expected := expect(table, state, tag, msg, kind, gen.transitions)

		var actual Outcome
		box.arm()
		if trKind == ir.Cast {
			mon.Cast(msg)
			actual = outcomeFromViolation(box.disarm())
		} else {
			_, v := mon.Call(msg, callTimeout)
			box.disarm()
			actual = outcomeFromViolation(v)
		}

		step := Step{
			Index:    idx,
			Command:  kind,
			State:    state,
			Tag:      tag,
			Message:  msg,
			Expected: expected,
			Actual:   actual,
			Passed:   matches(expected, actual),
		}
		result.Steps = append(result.Steps, step)
		if !step.Passed {
			last := result.Steps[len(result.Steps)-1]
			result.FailingStep = &last
			break
		}
	}

	result.PropertyViolations = collector.FilterByBlame(monitor.BlameProperty)
	result.Passed = result.FailingStep == nil && len(result.PropertyViolations) == 0
	return result
}

// transitionKind resolves the ir.TransitionKind (call vs cast) a command's
// tag should be invoked under: the live dispatch entry when one exists
// (guard_fail, and valid/bad_type/wrong_state when the tag happens to be
// valid here), else the globally-declared transition, else Call for
// genuinely unknown tags (the only way to observe their violation is
// through a call's return value; a cast never surfaces one).
func transitionKind(table *dispatch.Table, gen *Generator, state, tag string) (*ir.Transition, ir.TransitionKind) {
	if tr, ok := table.Lookup(state, tag); ok {
		return tr, tr.Kind
	}
	if tr, ok := gen.transitions[tag]; ok {
		return &tr, tr.Kind
	}
	return nil, ir.Call
}

func stopServer(server monitor.Server, timeout time.Duration) {
	s, ok := server.(Stoppable)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = s.Stop(ctx)
}

// captureBox records the single non-property violation (if any) a Cast
// produces during the armed window, since Cast never returns one directly
// and deliver() only ever routes it through the failure policy's Sink.
type captureBox struct {
	mu       sync.Mutex
	armed    bool
	captured *monitor.Violation
}

func (b *captureBox) arm() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.armed = true
	b.captured = nil
}

func (b *captureBox) disarm() *monitor.Violation {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.armed = false
	return b.captured
}

func (b *captureBox) capture(v *monitor.Violation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.armed && v.Blame != monitor.BlameProperty {
		b.captured = v
	}
}
