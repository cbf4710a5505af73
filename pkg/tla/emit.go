package tla

import (
	"fmt"
	"strings"

	"github.com/ternarybob/accord/pkg/ir"
)

// EmitTLA renders m as a standard TLA+ module, per spec.md §4.6's emission
// description: VARIABLES pc, tracks, history vars; an Init predicate; one
// action per (state, transition, branch); a Next disjunction; property
// definitions. A comment above each action and property definition carries
// its Accord name and, when its span is set, its originating source
// location so a human reading the generated module can trace back to the
// contract that produced it.
func EmitTLA(m *Module) string {
	var b strings.Builder

	fmt.Fprintf(&b, "---- MODULE %s ----\n", sanitizeIdent(m.Name))
	b.WriteString("EXTENDS Integers, Sequences, FiniteSets, TLC\n\n")

	if m.NeedsIntBound {
		b.WriteString("CONSTANTS IntBound\n\n")
	}

	vars := []string{"pc"}
	for _, t := range m.Tracks {
		vars = append(vars, t.Name)
	}
	if m.NeedsHistory {
		vars = append(vars, "msgLog")
	}
	fmt.Fprintf(&b, "VARIABLES %s\n\n", strings.Join(vars, ", "))
	fmt.Fprintf(&b, "vars == <<%s>>\n\n", strings.Join(vars, ", "))

	writeInit(&b, m)
	b.WriteString("\n")

	for _, a := range m.Actions {
		writeAction(&b, a, m.Tracks)
		b.WriteString("\n")
	}

	writeNext(&b, m)
	b.WriteString("\n")

	b.WriteString("Spec == Init /\\ [][Next]_vars\n\n")

	for _, p := range m.Properties {
		fmt.Fprintf(&b, "%s%s == %s\n\n", sourceComment(p.Name, p.Span), sanitizeIdent(p.Name), p.Formula)
	}

	b.WriteString("====\n")
	return b.String()
}

func writeInit(b *strings.Builder, m *Module) {
	b.WriteString("Init ==\n")
	fmt.Fprintf(b, "  /\\ pc = %q\n", m.Initial)
	for _, t := range m.Tracks {
		fmt.Fprintf(b, "  /\\ %s = %s\n", t.Name, lowerLiteral(t.Default))
	}
	if m.NeedsHistory {
		b.WriteString("  /\\ msgLog = <<>>\n")
	}
}

func writeAction(b *strings.Builder, a Action, tracks []ir.Track) {
	name := sanitizeIdent(a.Name)
	b.WriteString(sourceComment(a.Name, a.Span))
	if len(a.Params) == 0 {
		fmt.Fprintf(b, "%s ==\n", name)
	} else {
		fmt.Fprintf(b, "%s(%s) ==\n", name, strings.Join(a.Params, ", "))
	}
	fmt.Fprintf(b, "  /\\ %s\n", a.Guard)
	fmt.Fprintf(b, "  /\\ pc' = %q\n", a.ToState)

	var unchanged []string
	for _, t := range tracks {
		if expr, ok := a.Updates[t.Name]; ok {
			fmt.Fprintf(b, "  /\\ %s' = %s\n", t.Name, expr)
		} else {
			unchanged = append(unchanged, t.Name)
		}
	}
	if len(unchanged) > 0 {
		fmt.Fprintf(b, "  /\\ UNCHANGED <<%s>>\n", strings.Join(unchanged, ", "))
	}
	if a.LogsHistory {
		fmt.Fprintf(b, "  /\\ msgLog' = Append(msgLog, [tag |-> %q, to |-> %q, args |-> [%s]])\n",
			a.MessageTag, a.ToState, argsRecord(a.Params))
	}
}

func argsRecord(params []string) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s |-> %s", p, p)
	}
	return strings.Join(parts, ", ")
}

func writeNext(b *strings.Builder, m *Module) {
	if len(m.Actions) == 0 {
		b.WriteString("Next == FALSE\n")
		return
	}
	b.WriteString("Next ==\n")
	for _, a := range m.Actions {
		name := sanitizeIdent(a.Name)
		if len(a.Params) == 0 {
			fmt.Fprintf(b, "  \\/ %s\n", name)
		} else {
			bindings := make([]string, len(a.Params))
			for i, p := range a.Params {
				bindings[i] = fmt.Sprintf("%s \\in %s", p, a.ParamDomains[i])
			}
			fmt.Fprintf(b, "  \\/ \\E %s : %s(%s)\n", strings.Join(bindings, ", "), name, strings.Join(a.Params, ", "))
		}
	}
}

// EmitCfg renders the TLC configuration accompanying m.
func EmitCfg(m *Module) string {
	var b strings.Builder
	b.WriteString("SPECIFICATION Spec\n")

	if m.NeedsIntBound {
		fmt.Fprintf(&b, "CONSTANTS\n  IntBound = %d\n", m.IntBound)
	}

	var invariants, properties []string
	for _, p := range m.Properties {
		switch p.CfgSection {
		case "INVARIANTS":
			invariants = append(invariants, sanitizeIdent(p.Name))
		case "PROPERTIES":
			properties = append(properties, sanitizeIdent(p.Name))
		}
	}
	if len(invariants) > 0 {
		b.WriteString("INVARIANTS\n")
		for _, n := range invariants {
			fmt.Fprintf(&b, "  %s\n", n)
		}
	}
	if len(properties) > 0 {
		b.WriteString("PROPERTIES\n")
		for _, n := range properties {
			fmt.Fprintf(&b, "  %s\n", n)
		}
	}
	return b.String()
}

// sourceComment renders the `\*` line above a definition: its Accord name,
// followed by file:line:column when the span carries a location.
func sourceComment(name string, s ir.Span) string {
	if s.IsZero() {
		return fmt.Sprintf("\\* %s\n", name)
	}
	return fmt.Sprintf("\\* %s (%s:%d:%d)\n", name, s.File, s.Line, s.Column)
}

// sanitizeIdent maps an Accord identifier to a TLA+ identifier by
// replacing each '-' with '_'. Every other character, including a leading
// digit, passes through unchanged.
func sanitizeIdent(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}
