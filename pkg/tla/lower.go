package tla

import (
	"fmt"

	"github.com/ternarybob/accord/pkg/ir"
)

var binOps = map[string]string{
	"==": "=", "!=": "#",
	"<": "<", "<=": "<=", ">": ">", ">=": ">=",
	"+": "+", "-": "-", "*": "*",
	"and": "/\\", "or": "\\/",
}

// lowerExpr renders a preserved syntactic form as TLA+ text. argNames maps
// message positional indices to the parameter names used by the enclosing
// action definition. It returns ok=false (with no text) for any subtree
// ir.Lowerable already rejects, and also for an empty TrackRef or a
// MessageField index outside argNames — the latter should never happen
// for a well-formed IR, but lowering stays defensive rather than panicking.
// A non-empty TrackRef is rendered as-is; it is not checked against the
// declared tracks.
func lowerExpr(e ir.Expr, argNames []string) (string, bool) {
	switch e.Kind {
	case ir.ExprLiteral:
		return lowerLiteral(e.Literal), true
	case ir.ExprTrackRef:
		if e.TrackRef == "" {
			return "", false
		}
		return e.TrackRef, true
	case ir.ExprMessageField:
		if e.MessageField < 0 || e.MessageField >= len(argNames) {
			return "", false
		}
		name := argNames[e.MessageField]
		if name == "" {
			name = fmt.Sprintf("arg%d", e.MessageField)
		}
		return name, true
	case ir.ExprBinOp:
		op, ok := binOps[e.Op]
		if !ok || e.Left == nil || e.Right == nil {
			return "", false
		}
		l, lok := lowerExpr(*e.Left, argNames)
		r, rok := lowerExpr(*e.Right, argNames)
		if !lok || !rok {
			return "", false
		}
		return fmt.Sprintf("(%s %s %s)", l, op, r), true
	case ir.ExprUnOp:
		if e.Op != "not" || e.Left == nil {
			return "", false
		}
		inner, ok := lowerExpr(*e.Left, argNames)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("(~%s)", inner), true
	default:
		return "", false
	}
}

// lowerLiteral renders a Go literal value as TLA+ syntax. nil models the
// absence value as the NULL atom rather than a TLA+ built-in, since TLA+
// has no null.
func lowerLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
