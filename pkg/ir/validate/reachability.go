package validate

import "github.com/ternarybob/accord/pkg/ir"

const passReachability = "reachability"

// Reachability runs a fixed-point BFS from the initial state through
// transition branches plus anystate edges. Unreachable non-terminal states
// and "no terminal reachable" (when terminals exist) are warnings, never
// errors.
func Reachability(i *ir.IR) (*ir.IR, []Diagnostic) {
	var diags []Diagnostic

	reached := map[string]bool{}
	if i.Initial != "" {
		reached[i.Initial] = true
	}
	queue := []string{i.Initial}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		st, ok := i.States[name]
		if !ok || st.Terminal {
			continue
		}
		next := func(tr ir.Transition) {
			for _, b := range tr.Branches {
				target := b.NextState
				if target == ir.SameState {
					target = name
				}
				if target == "" || reached[target] {
					continue
				}
				reached[target] = true
				queue = append(queue, target)
			}
			if len(tr.Branches) == 0 {
				// cast with no branches: implicit self-loop.
				return
			}
		}
		for _, tr := range st.Transitions {
			next(tr)
		}
		for _, tr := range i.Anystate {
			next(tr)
		}
	}

	hasTerminal := false
	anyTerminalReached := false
	for name, st := range i.States {
		if st.Terminal {
			hasTerminal = true
			if reached[name] {
				anyTerminalReached = true
			}
			continue
		}
		if !reached[name] {
			diags = append(diags, warnf(passReachability, "state %q is unreachable from %q", name, i.Initial))
		}
	}
	if hasTerminal && !anyTerminalReached {
		diags = append(diags, warnf(passReachability, "no terminal state is reachable from %q", i.Initial))
	}

	return i, diags
}
