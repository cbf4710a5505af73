package monitor

import (
	"fmt"

	"github.com/ternarybob/accord/pkg/ir"
)

// evalContext carries everything a runtime property check needs.
type evalContext struct {
	property string
	check    ir.Check
	old      map[string]any
	new      map[string]any
	fromSt   string
	toSt     string
	message  *ir.Tag
	reply    any
	history  *History
	corrStacks map[string][]any
}

// evalProperties runs every applicable check over a committed (or
// about-to-commit) transition and returns the violations raised. Per
// spec.md §4.4, property violations never roll back the transition — the
// caller still commits regardless of what this returns.
func (m *Monitor) evalProperties(ctx evalContext) []*Violation {
	var out []*Violation
	for _, prop := range m.ir.Properties {
		for _, check := range prop.Checks {
			ctx.property = prop.Name
			ctx.check = check
			if v := evalCheck(m, ctx); v != nil {
				out = append(out, v)
			}
		}
	}
	return out
}

func evalCheck(m *Monitor, ctx evalContext) *Violation {
	c := ctx.check
	switch c.Kind {
	case ir.CheckInvariant:
		if c.Predicate == nil || c.Predicate.InvariantFn == nil {
			return nil
		}
		if !c.Predicate.InvariantFn(ctx.new) {
			return propViolation(KindInvariantViolated, ctx)
		}
	case ir.CheckLocalInvariant:
		if ctx.toSt != c.State {
			return nil
		}
		if c.Predicate == nil || c.Predicate.LocalFn == nil {
			return nil
		}
		if !c.Predicate.LocalFn(ctx.message, ctx.new) {
			return propViolation(KindInvariantViolated, ctx)
		}
	case ir.CheckAction:
		if c.Predicate == nil || c.Predicate.ActionFn == nil {
			return nil
		}
		if !c.Predicate.ActionFn(ctx.old, ctx.new) {
			return propViolation(KindActionViolated, ctx)
		}
	case ir.CheckBounded:
		v, ok := asInt(ctx.new[c.Track])
		if ok && v > c.Max {
			return propViolation(KindBounded, ctx)
		}
	case ir.CheckOrdered:
		tag, _ := ir.MessageTag(ctx.message)
		if tag != c.Event {
			return nil
		}
		args := ir.MessageArgs(ctx.message)
		fields := fieldsFor(m, tag, args)
		current, ok := fields[c.By]
		if !ok {
			return nil
		}
		if last, had := ctx.history.LastFieldValue(c.Event, c.By); had {
			if !geq(current, last) {
				return propViolation(KindOrdered, ctx)
			}
		}
	case ir.CheckCorrespondence:
		tag, _ := ir.MessageTag(ctx.message)
		stack := ctx.corrStacks[ctx.property]
		switch {
		case tag == c.Open:
			stack = append(stack, ctx.message)
			ctx.corrStacks[ctx.property] = stack
		case containsTag(c.Close, tag):
			if len(stack) == 0 {
				return propViolation(KindCorrespondence, ctx)
			}
			ctx.corrStacks[ctx.property] = stack[:len(stack)-1]
		}
		if m.dispatch.IsTerminal(ctx.toSt) && len(ctx.corrStacks[ctx.property]) != 0 {
			return propViolation(KindCorrespondence, ctx)
		}
	case ir.CheckPrecedence:
		if ctx.toSt != c.Target {
			return nil
		}
		if !ctx.history.ContainsState(c.Required) {
			return propViolation(KindPrecedence, ctx)
		}
	case ir.CheckForbidden:
		if c.Predicate == nil || c.Predicate.ForbiddenFn == nil {
			return nil
		}
		if c.Predicate.ForbiddenFn(ctx.toSt, ctx.new) {
			return propViolation(KindForbiddenViolated, ctx)
		}
	case ir.CheckLiveness, ir.CheckReachable:
		// design-time only; no-op at runtime per spec.md §4.5.
		return nil
	}
	return nil
}

func propViolation(kind Kind, ctx evalContext) *Violation {
	return &Violation{
		Blame:   BlameProperty,
		Kind:    kind,
		State:   ctx.toSt,
		Message: ctx.message,
		Reply:   ctx.reply,
		Context: map[string]any{
			"property": ctx.property,
			"tracks":   ctx.new,
		},
	}
}

func fieldsFor(m *Monitor, tag string, args []any) map[string]any {
	names := m.argNames[tag]
	fields := make(map[string]any, len(args))
	for i, v := range args {
		if i < len(names) && names[i] != "" {
			fields[names[i]] = v
		} else {
			fields[fmt.Sprintf("arg%d", i)] = v
		}
	}
	return fields
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	default:
		return 0, false
	}
}

func geq(a, b any) bool {
	an, aok := asInt(a)
	bn, bok := asInt(b)
	if aok && bok {
		return an >= bn
	}
	return false
}
