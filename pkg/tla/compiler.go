package tla

import "github.com/ternarybob/accord/pkg/ir"

// Compile lowers a validated IR to a TLA+ Module, per spec.md §4.6.
// Diagnostics are always hard errors here: an IR with any unlowerable
// guard, update, or property predicate cannot be emitted, though the
// compiler still collects every such diagnostic rather than stopping at
// the first one, so an author sees the full list in one pass.
func Compile(i *ir.IR) (*Module, []Diagnostic) {
	var diags []Diagnostic

	actions, needsIntBound, actionDiags := buildActions(i)
	diags = append(diags, actionDiags...)

	props, propDiags := buildProperties(i)
	diags = append(diags, propDiags...)

	hist := needsHistory(i)
	if hist {
		for idx := range actions {
			actions[idx].LogsHistory = true
		}
	}

	m := &Module{
		Name:          i.ProtocolName,
		Initial:       i.Initial,
		Tracks:        i.Tracks,
		StateList:     i.StateNames(),
		Actions:       actions,
		Properties:    props,
		NeedsHistory:  hist,
		NeedsIntBound: needsIntBound,
		IntBound:      DefaultIntBound,
		SpanTable:     buildSpanTable(i, actions, props),
	}

	if len(diags) > 0 {
		return nil, diags
	}
	return m, nil
}

func buildSpanTable(i *ir.IR, actions []Action, props []PropertyDef) map[string]ir.Span {
	table := make(map[string]ir.Span, len(actions)+len(props)+len(i.Tracks))
	for _, a := range actions {
		table[a.Name] = a.Span
	}
	for _, p := range props {
		table[p.Name] = p.Span
	}
	for _, t := range i.Tracks {
		table[t.Name] = t.Span
	}
	return table
}
