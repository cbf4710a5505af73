// Package dispatch flattens a validated IR into an O(1) lookup keyed by
// (state, message tag).
package dispatch

import "github.com/ternarybob/accord/pkg/ir"

// Key identifies one entry in the table.
type Key struct {
	State string
	Tag   string
}

// Table is the precomputed (state, tag) -> transition map, plus the set of
// terminal states.
type Table struct {
	entries   map[Key]*ir.Transition
	terminal  map[string]bool
	stateTags map[string][]string
}

// Build constructs a dispatch table from a validated IR. Construction order:
// for each non-terminal state, insert its own transitions first, then insert
// each anystate transition whose tag is not already present — state-local
// wins, matching the determinism pass's guarantee that no real conflict
// exists. __same__ next-states are resolved eagerly here (see SPEC_FULL.md's
// Open Question decision), so consumers never see the sentinel past this
// point.
func Build(i *ir.IR) *Table {
	t := &Table{
		entries:   make(map[Key]*ir.Transition),
		terminal:  make(map[string]bool),
		stateTags: make(map[string][]string),
	}

	for name, st := range i.States {
		if st.Terminal {
			t.terminal[name] = true
			continue
		}
		for idx := range st.Transitions {
			tr := resolveSame(st.Transitions[idx], name)
			key := Key{State: name, Tag: tr.MessageTag}
			t.entries[key] = &tr
			t.stateTags[name] = append(t.stateTags[name], tr.MessageTag)
		}
		for _, anyTr := range i.Anystate {
			key := Key{State: name, Tag: anyTr.MessageTag}
			if _, exists := t.entries[key]; exists {
				continue
			}
			resolved := resolveSame(anyTr, name)
			t.entries[key] = &resolved
			t.stateTags[name] = append(t.stateTags[name], resolved.MessageTag)
		}
	}

	return t
}

func resolveSame(tr ir.Transition, owner string) ir.Transition {
	branches := make([]ir.Branch, len(tr.Branches))
	for i, b := range tr.Branches {
		if b.NextState == ir.SameState {
			b.NextState = owner
		}
		branches[i] = b
	}
	tr.Branches = branches
	return tr
}

// Lookup returns the transition owned by (state, tag), or nil if none is
// registered.
func (t *Table) Lookup(state, tag string) (*ir.Transition, bool) {
	tr, ok := t.entries[Key{State: state, Tag: tag}]
	return tr, ok
}

// IsTerminal reports whether state is a terminal state.
func (t *Table) IsTerminal(state string) bool {
	return t.terminal[state]
}

// ValidTags returns the message tags accepted in state, used to populate
// invalid_message violation context.
func (t *Table) ValidTags(state string) []string {
	return append([]string(nil), t.stateTags[state]...)
}
