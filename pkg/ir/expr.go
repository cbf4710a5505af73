package ir

// ExprKind tags the variant of a preserved syntactic form. The grammar is
// deliberately the "documented subset" of §4.6: comparisons, arithmetic,
// record access, boolean connectives, literals, and variable references.
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprTrackRef
	ExprMessageField
	ExprBinOp
	ExprUnOp
	// ExprOpaque marks a guard/update/predicate whose author supplied only
	// a runtime Fn and no syntactic form. It is never lowerable; the TLA+
	// compiler reports a diagnostic for any action that needs one.
	ExprOpaque
)

// Expr is the syntactic form alongside a Closure's runtime Fn, consumed only
// by the TLA+ lowering pass.
type Expr struct {
	Kind ExprKind

	Literal any

	// TrackRef names a track.
	TrackRef string

	// MessageField indexes a positional argument of the triggering
	// message (0-based).
	MessageField int

	// BinOp/UnOp operator, one of: "==", "!=", "<", "<=", ">", ">=",
	// "+", "-", "*", "and", "or" (BinOp); "not" (UnOp).
	Op string

	Left  *Expr
	Right *Expr

	// OpaqueNote documents why an opaque expression could not be
	// expressed in the subset, surfaced in the dry-lowering diagnostic.
	OpaqueNote string
}

func Lit(v any) Expr { return Expr{Kind: ExprLiteral, Literal: v} }

func TrackRef(name string) Expr { return Expr{Kind: ExprTrackRef, TrackRef: name} }

func MessageField(i int) Expr { return Expr{Kind: ExprMessageField, MessageField: i} }

func BinOp(op string, left, right Expr) Expr {
	return Expr{Kind: ExprBinOp, Op: op, Left: &left, Right: &right}
}

func Not(e Expr) Expr { return Expr{Kind: ExprUnOp, Op: "not", Left: &e} }

func Opaque(note string) Expr { return Expr{Kind: ExprOpaque, OpaqueNote: note} }

// Lowerable reports whether e (and its subtree) can be lowered to TLA+ by
// the documented subset.
func Lowerable(e Expr) bool {
	switch e.Kind {
	case ExprOpaque:
		return false
	case ExprBinOp:
		return Lowerable(*e.Left) && Lowerable(*e.Right)
	case ExprUnOp:
		return Lowerable(*e.Left)
	default:
		return true
	}
}
