package tla

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/accord/pkg/ir"
)

// DefaultIntBound is the finite bound substituted for an otherwise
// unbounded integer-kind argument type, per spec.md §4.6.1's "finite
// domains for each argument ... derived from the declared types and a
// user-provided bound for infinite domains such as integer." It is large
// enough to let a bounded-track property (e.g. a fence that must stay
// below some ceiling) actually move and small enough for TLC to enumerate
// the resulting state space in a reasonable time; a contract author who
// needs a larger bound edits the emitted CONSTANTS line directly.
const DefaultIntBound = 3

// placeholderAtoms is the finite stand-in domain used for argument types
// that carry no enumerable value set of their own (a bare atom, string,
// binary, or term argument). Accord's type grammar has no way to attach an
// enumeration to these kinds, so emission falls back to a small fixed set
// of distinct placeholder values rather than an infinite one TLC could
// never enumerate; a contract that needs real values there should narrow
// the argument's declared type to a Literal or a Union of Literals.
var placeholderAtoms = []string{"v1", "v2"}

// domainFor derives the finite TLA+ set expression a single message
// argument of type t ranges over, per spec.md §4.6.1. needsIntBound is set
// to true whenever any integer-kind range is used, so the caller knows to
// declare the shared IntBound constant.
func domainFor(t ir.T, needsIntBound *bool) string {
	switch t.Kind {
	case ir.KindBoolean:
		return "BOOLEAN"
	case ir.KindInteger:
		*needsIntBound = true
		return "(-IntBound)..IntBound"
	case ir.KindPosInteger:
		*needsIntBound = true
		return "1..IntBound"
	case ir.KindNonNegInteger:
		*needsIntBound = true
		return "0..IntBound"
	case ir.KindLiteral:
		return fmt.Sprintf("{%s}", lowerLiteral(t.Literal))
	case ir.KindUnion:
		if lits, ok := literalValues(t); ok {
			return fmt.Sprintf("{%s}", strings.Join(lits, ", "))
		}
		return placeholderDomain()
	default:
		// atom, string, binary, map, term, list, tuple, struct, tagged: no
		// enumerable value set in Accord's type grammar to derive a real
		// domain from.
		return placeholderDomain()
	}
}

// literalValues returns the rendered values of a union all of whose
// members are Literal types, or ok=false if any member is not.
func literalValues(t ir.T) ([]string, bool) {
	out := make([]string, 0, len(t.Elems))
	for _, m := range t.Elems {
		if m.Kind != ir.KindLiteral {
			return nil, false
		}
		out = append(out, lowerLiteral(m.Literal))
	}
	sort.Strings(out)
	return out, true
}

func placeholderDomain() string {
	quoted := make([]string, len(placeholderAtoms))
	for i, a := range placeholderAtoms {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	return fmt.Sprintf("{%s}", strings.Join(quoted, ", "))
}
