package tla

import (
	"fmt"
	"strings"

	"github.com/ternarybob/accord/pkg/ir"
)

// buildActions constructs one Action per (state, transition, branch)
// triple, per spec.md §4.6.2, over both state-local and anystate
// transitions (the latter expanded once per non-terminal state).
func buildActions(i *ir.IR) ([]Action, bool, []Diagnostic) {
	var actions []Action
	var diags []Diagnostic
	needsIntBound := false

	states := i.StateNames()
	for _, stateName := range states {
		st := i.States[stateName]
		if st.Terminal {
			continue
		}
		for ti, tr := range st.Transitions {
			as, ds := buildTransitionActions(stateName, tr, ti, &needsIntBound)
			actions = append(actions, as...)
			diags = append(diags, ds...)
		}
		for ti, tr := range i.Anystate {
			if hasOwnTag(st.Transitions, tr.MessageTag) {
				continue // state-local shadows anystate, same as dispatch.Build
			}
			as, ds := buildTransitionActions(stateName, tr, ti, &needsIntBound)
			actions = append(actions, as...)
			diags = append(diags, ds...)
		}
	}
	return actions, needsIntBound, diags
}

func hasOwnTag(trs []ir.Transition, tag string) bool {
	for _, t := range trs {
		if t.MessageTag == tag {
			return true
		}
	}
	return false
}

func buildTransitionActions(state string, tr ir.Transition, ti int, needsIntBound *bool) ([]Action, []Diagnostic) {
	var actions []Action
	var diags []Diagnostic

	params := make([]string, len(tr.MessageTypes))
	domains := make([]string, len(tr.MessageTypes))
	for i := range params {
		if i < len(tr.ArgNames) && tr.ArgNames[i] != "" {
			params[i] = tr.ArgNames[i]
		} else {
			params[i] = fmt.Sprintf("arg%d", i)
		}
		domains[i] = domainFor(tr.MessageTypes[i], needsIntBound)
	}

	var guardParts []string
	guardParts = append(guardParts, fmt.Sprintf("pc = %q", state))
	if tr.Guard != nil {
		if !ir.Lowerable(tr.Guard.Syntax) {
			diags = append(diags, diag(
				fmt.Sprintf("guard on %s/%s cannot be lowered to TLA+: %s", state, tr.MessageTag, tr.Guard.Syntax.OpaqueNote),
				tr.Span))
		} else if text, ok := lowerExpr(tr.Guard.Syntax, params); ok {
			guardParts = append(guardParts, text)
		} else {
			diags = append(diags, diag(
				fmt.Sprintf("guard on %s/%s references an unresolvable operand", state, tr.MessageTag),
				tr.Span))
		}
	}
	guard := strings.Join(guardParts, " /\\ ")

	updates := map[string]string{}
	if tr.Update != nil {
		for track, expr := range tr.Update.TrackExprs {
			if !ir.Lowerable(expr) {
				diags = append(diags, diag(
					fmt.Sprintf("update to track %q on %s/%s cannot be lowered to TLA+: %s", track, state, tr.MessageTag, expr.OpaqueNote),
					tr.Span))
				continue
			}
			text, ok := lowerExpr(expr, params)
			if !ok {
				diags = append(diags, diag(
					fmt.Sprintf("update to track %q on %s/%s references an unresolvable operand", track, state, tr.MessageTag),
					tr.Span))
				continue
			}
			updates[track] = text
		}
	}

	for bi, b := range tr.Branches {
		name := fmt.Sprintf("%s_%s_%d_%d", state, tr.MessageTag, ti, bi)
		next := b.NextState
		if next == ir.SameState {
			next = state
		}
		actions = append(actions, Action{
			Name:         name,
			Params:       params,
			ParamDomains: domains,
			FromState:    state,
			ToState:      next,
			Guard:        guard,
			Updates:      updates,
			LogsHistory:  false, // set by the compiler once it knows NeedsHistory
			MessageTag:   tr.MessageTag,
			Span:         tr.Span,
		})
	}
	// A cast transition may declare zero branches (no reply arm); it still
	// needs exactly one action, self-looping if no branch supplied a next
	// state (mirrors the reachability pass's cast-empty-branches handling).
	if len(tr.Branches) == 0 {
		name := fmt.Sprintf("%s_%s_%d", state, tr.MessageTag, ti)
		actions = append(actions, Action{
			Name:         name,
			Params:       params,
			ParamDomains: domains,
			FromState:    state,
			ToState:      state,
			Guard:        guard,
			Updates:      updates,
			MessageTag:   tr.MessageTag,
			Span:         tr.Span,
		})
	}

	return actions, diags
}
