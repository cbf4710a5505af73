package validate

import "github.com/ternarybob/accord/pkg/ir"

const passDeterminism = "determinism"

// Determinism checks that for every non-terminal state, the union of its
// own message tags and the anystate tags has no duplicates. Collisions are
// rejected outright; Accord does not offer a shadowing-resolution mode (see
// SPEC_FULL.md design notes).
func Determinism(i *ir.IR) (*ir.IR, []Diagnostic) {
	var diags []Diagnostic

	anystateTags := map[string]bool{}
	for _, tr := range i.Anystate {
		if anystateTags[tr.MessageTag] {
			diags = append(diags, errf(passDeterminism, "anystate transition %q is declared more than once", tr.MessageTag))
		}
		anystateTags[tr.MessageTag] = true
	}

	for name, st := range i.States {
		if st.Terminal {
			continue
		}
		local := map[string]bool{}
		for _, tr := range st.Transitions {
			if local[tr.MessageTag] {
				diags = append(diags, errf(passDeterminism, "state %q: message tag %q is owned by more than one transition", name, tr.MessageTag))
				continue
			}
			local[tr.MessageTag] = true
			if anystateTags[tr.MessageTag] {
				diags = append(diags, errf(passDeterminism, "state %q: message tag %q collides with an anystate transition", name, tr.MessageTag))
			}
		}
	}

	return i, diags
}
