package tla

import (
	"fmt"

	"github.com/ternarybob/accord/pkg/ir"
)

// needsHistory reports whether any check is of a kind whose lowering
// depends on the msgLog history variable (spec.md §4.6.3).
func needsHistory(i *ir.IR) bool {
	for _, p := range i.Properties {
		for _, c := range p.Checks {
			switch c.Kind {
			case ir.CheckOrdered, ir.CheckCorrespondence, ir.CheckPrecedence:
				return true
			}
		}
	}
	return false
}

// buildProperties lowers each IR Property's checks to one or more TLA+
// definitions, per the mapping in spec.md §4.6.3.
func buildProperties(i *ir.IR) ([]PropertyDef, []Diagnostic) {
	var defs []PropertyDef
	var diags []Diagnostic

	for _, p := range i.Properties {
		for ci, c := range p.Checks {
			def, ok, errText := lowerCheck(p.Name, c, ci)
			if errText != "" {
				diags = append(diags, diag(errText, c.Span))
				continue
			}
			if ok {
				defs = append(defs, def)
			}
		}
	}
	return defs, diags
}

func lowerCheck(propName string, c ir.Check, ci int) (PropertyDef, bool, string) {
	name := fmt.Sprintf("%s_%d", propName, ci)

	switch c.Kind {
	case ir.CheckInvariant:
		body, ok := lowerPredicate(c.Predicate, nil)
		if !ok {
			return PropertyDef{}, false, fmt.Sprintf("invariant %q cannot be lowered to TLA+", propName)
		}
		return PropertyDef{Name: name, CfgSection: "INVARIANTS", Formula: body, Span: c.Span}, true, ""

	case ir.CheckLocalInvariant:
		body, ok := lowerPredicate(c.Predicate, nil)
		if !ok {
			return PropertyDef{}, false, fmt.Sprintf("local_invariant %q cannot be lowered to TLA+", propName)
		}
		formula := fmt.Sprintf("(pc = %q) => %s", c.State, body)
		return PropertyDef{Name: name, CfgSection: "INVARIANTS", Formula: formula, Span: c.Span}, true, ""

	case ir.CheckAction:
		// Action-level properties relate old and new track values, but the
		// Expr grammar has no old/new distinction: the predicate's syntax
		// is lowered as-is, every track reference renders unprimed, and
		// the formula is listed as an invariant over a single state.
		if c.Predicate == nil || !ir.Lowerable(c.Predicate.Syntax) {
			return PropertyDef{}, false, fmt.Sprintf("action property %q cannot be lowered to TLA+", propName)
		}
		body, ok := lowerExpr(c.Predicate.Syntax, nil)
		if !ok {
			return PropertyDef{}, false, fmt.Sprintf("action property %q references an unresolvable operand", propName)
		}
		return PropertyDef{Name: name, CfgSection: "INVARIANTS", Formula: body, Span: c.Span}, true, ""

	case ir.CheckBounded:
		formula := fmt.Sprintf("%s <= %d", c.Track, c.Max)
		return PropertyDef{Name: name, CfgSection: "INVARIANTS", Formula: formula, Span: c.Span}, true, ""

	case ir.CheckForbidden:
		body, ok := lowerPredicate(c.Predicate, nil)
		if !ok {
			return PropertyDef{}, false, fmt.Sprintf("forbidden property %q cannot be lowered to TLA+", propName)
		}
		return PropertyDef{Name: name, CfgSection: "INVARIANTS", Formula: fmt.Sprintf("~(%s)", body), Span: c.Span}, true, ""

	case ir.CheckLiveness:
		formula := fmt.Sprintf("%s ~> %s", tlaString(c.Trigger), tlaString(c.Target))
		return PropertyDef{Name: name, CfgSection: "PROPERTIES", Formula: formula, Span: c.Span}, true, ""

	case ir.CheckReachable:
		// "violated = reachable" per spec.md §4.6.3: express as a negated
		// invariant so TLC's witness-on-violation behavior surfaces a
		// reaching trace.
		formula := fmt.Sprintf("pc # %s", tlaString(c.ReachTarget))
		return PropertyDef{Name: name, CfgSection: "INVARIANTS", Formula: formula, Span: c.Span}, true, ""

	case ir.CheckOrdered:
		formula := fmt.Sprintf(
			"\\A i, j \\in DOMAIN msgLog : (i < j /\\ msgLog[i].tag = %s /\\ msgLog[j].tag = %s) => (msgLog[i].args[%s] <= msgLog[j].args[%s])",
			tlaString(c.Event), tlaString(c.Event), tlaString(c.By), tlaString(c.By))
		return PropertyDef{Name: name, CfgSection: "INVARIANTS", Formula: formula, Span: c.Span}, true, ""

	case ir.CheckPrecedence:
		// spec.md §4.2 pass 5: precedence.{target, required} are both
		// states, not message tags — "required must appear in the
		// history" means some earlier step committed to that state.
		formula := fmt.Sprintf(
			"\\A i \\in DOMAIN msgLog : msgLog[i].to = %s => (\\E k \\in 1..(i-1) : msgLog[k].to = %s)",
			tlaString(c.Target), tlaString(c.Required))
		return PropertyDef{Name: name, CfgSection: "INVARIANTS", Formula: formula, Span: c.Span}, true, ""

	case ir.CheckCorrespondence:
		closeSet := make([]string, len(c.Close))
		for i, t := range c.Close {
			closeSet[i] = tlaString(t)
		}
		formula := fmt.Sprintf(
			"LET opens == {i \\in DOMAIN msgLog : msgLog[i].tag = %s}\n"+
				"        closes == {i \\in DOMAIN msgLog : msgLog[i].tag \\in {%s}}\n"+
				"    IN Cardinality(closes) <= Cardinality(opens)",
			tlaString(c.Open), joinTLASet(closeSet))
		return PropertyDef{Name: name, CfgSection: "INVARIANTS", Formula: formula, Span: c.Span}, true, ""
	}
	return PropertyDef{}, false, fmt.Sprintf("unrecognized check kind in property %q", propName)
}

func lowerPredicate(p *ir.Predicate, argNames []string) (string, bool) {
	if p == nil || !ir.Lowerable(p.Syntax) {
		return "", false
	}
	return lowerExpr(p.Syntax, argNames)
}

func tlaString(s string) string { return fmt.Sprintf("%q", s) }

func joinTLASet(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ", "
		}
		out += it
	}
	return out
}
