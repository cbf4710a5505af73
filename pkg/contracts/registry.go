// Package contracts is the by-name lookup Accord's CLI and MCP surface
// use to find an IR: the IR itself is always populated by caller Go code
// (no surface DSL, per spec.md's Non-goals), so a "Module" argument on
// `print-tla`, `check`, or the MCP tools resolves through this registry
// rather than through a parser.
package contracts

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ternarybob/accord/pkg/ir"
)

// Registry maps a protocol name to its IR, mirroring the shape of the
// teacher's pkg/agent.Registry (register/get/list by name, guarded by one
// mutex).
type Registry struct {
	mu        sync.RWMutex
	protocols map[string]*ir.IR
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{protocols: make(map[string]*ir.IR)}
}

// Register adds a protocol's IR under name, replacing any prior entry.
func (r *Registry) Register(name string, i *ir.IR) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.protocols[name] = i
}

// Get returns the named protocol's IR.
func (r *Registry) Get(name string) (*ir.IR, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.protocols[name]
	if !ok {
		return nil, fmt.Errorf("no registered contract named %q (known: %v)", name, r.namesLocked())
	}
	return i, nil
}

// Names returns every registered protocol name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.protocols))
	for name := range r.protocols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// global is the registry built-in contracts register themselves into, and
// the one `cmd/accord` and `internal/mcpserver` use unless a caller embeds
// Accord as a library with its own Registry.
var global = NewRegistry()

// Global returns the process-wide registry.
func Global() *Registry {
	return global
}
