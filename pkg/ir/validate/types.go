package validate

import "github.com/ternarybob/accord/pkg/ir"

const passTypes = "types"

// Types checks every track default conforms to its declared type and that
// a transition's arg-name list, when given, has one name per message type.
// Branch reply types are only inspected for a bare term, which yields a
// warning; they are not otherwise checked.
func Types(i *ir.IR) (*ir.IR, []Diagnostic) {
	var diags []Diagnostic

	for _, tr := range i.Tracks {
		if !ir.Conforms(tr.Default, tr.Type) {
			diags = append(diags, errf(passTypes, "track %q: default %v does not conform to %s", tr.Name, tr.Default, ir.Render(tr.Type)))
		}
	}

	check := func(state string, tr ir.Transition) {
		if len(tr.ArgNames) != 0 && len(tr.ArgNames) != len(tr.MessageTypes) {
			diags = append(diags, errf(passTypes, "state %q: transition %q declares %d arg names for %d message types", state, tr.MessageTag, len(tr.ArgNames), len(tr.MessageTypes)))
		}
		for _, b := range tr.Branches {
			if b.ReplyType.Kind == ir.KindTerm {
				diags = append(diags, warnf(passTypes, "state %q: transition %q branch to %q accepts bare term reply; confirm this is deliberate", state, tr.MessageTag, b.NextState))
			}
		}
	}

	for name, st := range i.States {
		for _, tr := range st.Transitions {
			check(name, tr)
		}
	}
	for _, tr := range i.Anystate {
		check("<anystate>", tr)
	}

	return i, diags
}
