package validate

import "github.com/ternarybob/accord/pkg/ir"

const passStructural = "structural"

// Structural checks required keys are present, initial resolves, terminal
// states carry no transitions, message patterns are well-formed, and call
// transitions declare at least one branch.
func Structural(i *ir.IR) (*ir.IR, []Diagnostic) {
	var diags []Diagnostic

	if i.ProtocolName == "" {
		diags = append(diags, errf(passStructural, "protocol name is required"))
	}
	if i.Initial == "" {
		diags = append(diags, errf(passStructural, "initial state is required"))
	} else if _, ok := i.States[i.Initial]; !ok {
		diags = append(diags, errf(passStructural, "initial state %q is not declared", i.Initial))
	}

	for name, state := range i.States {
		if name == "" {
			diags = append(diags, errf(passStructural, "state has empty name"))
			continue
		}
		if state.Terminal && len(state.Transitions) != 0 {
			diags = append(diags, errf(passStructural, "terminal state %q declares %d transitions, must declare zero", name, len(state.Transitions)))
		}
		for _, tr := range state.Transitions {
			diags = append(diags, checkTransition(passStructural, name, tr)...)
		}
	}
	for _, tr := range i.Anystate {
		diags = append(diags, checkTransition(passStructural, "<anystate>", tr)...)
	}

	return i, diags
}

func checkTransition(pass, state string, tr ir.Transition) []Diagnostic {
	var diags []Diagnostic
	if tr.MessageTag == "" {
		diags = append(diags, errf(pass, "state %q: transition has empty message tag", state))
	}
	if len(tr.Branches) == 0 && tr.Kind == ir.Call {
		diags = append(diags, errf(pass, "state %q: call transition %q declares no branches", state, tr.MessageTag))
	}
	return diags
}
