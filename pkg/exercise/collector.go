package exercise

import (
	"sync"

	"github.com/ternarybob/accord/pkg/monitor"
)

// Entry pairs a violation with its monotonic insertion key.
type Entry struct {
	Key       int64
	Violation *monitor.Violation
}

// Collector is the process-wide violation collector from spec.md §5's
// "Shared resources" note: violations are appended from the monitor's own
// goroutine (via a FailurePolicy Sink), indexed by a monotonically
// increasing key, and drained/filtered by whoever owns a run.
type Collector struct {
	mu      sync.Mutex
	nextKey int64
	entries []Entry
}

// NewCollector returns an empty collector. Most callers use Global()
// instead; NewCollector exists for tests that want isolation from the
// process-wide instance.
func NewCollector() *Collector {
	return &Collector{}
}

var global = NewCollector()

// Global returns the process-wide collector shared by exerciser runs that
// don't supply their own.
func Global() *Collector { return global }

// Init resets the collector, discarding any prior entries. A run calls this
// once at the start to scope "violations collected during the run" to its
// own execution.
func (c *Collector) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextKey = 0
	c.entries = nil
}

// Add appends v under the next monotonic key. Safe to call concurrently;
// it is installed as a FailurePolicy Sink, which runs on the monitor's own
// goroutine.
func (c *Collector) Add(v *monitor.Violation) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := Entry{Key: c.nextKey, Violation: v}
	c.nextKey++
	c.entries = append(c.entries, e)
	return e
}

// Drain removes and returns every collected entry, in insertion order.
func (c *Collector) Drain() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.entries
	c.entries = nil
	return out
}

// FilterByBlame returns a snapshot (non-destructive) of collected entries
// whose violation carries the given blame.
func (c *Collector) FilterByBlame(blame monitor.Blame) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Entry
	for _, e := range c.entries {
		if e.Violation != nil && e.Violation.Blame == blame {
			out = append(out, e)
		}
	}
	return out
}
