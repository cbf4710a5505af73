package ir

import "unicode/utf8"

// Conforms is Accord's structural conformance check: does value satisfy the
// shape described by t. It never panics on well-formed T values built
// through the constructors in type.go.
func Conforms(value any, t T) bool {
	switch t.Kind {
	case KindTerm:
		return true
	case KindInteger:
		_, ok := asInt(value)
		return ok
	case KindPosInteger:
		n, ok := asInt(value)
		return ok && n > 0
	case KindNonNegInteger:
		n, ok := asInt(value)
		return ok && n >= 0
	case KindAtom:
		_, ok := value.(string)
		return ok
	case KindBoolean:
		_, ok := value.(bool)
		return ok
	case KindBinary:
		switch v := value.(type) {
		case []byte:
			return true
		case string:
			_ = v
			return true
		default:
			return false
		}
	case KindString:
		switch v := value.(type) {
		case string:
			return utf8.ValidString(v)
		case []byte:
			return utf8.Valid(v)
		default:
			return false
		}
	case KindMap:
		_, ok := value.(map[string]any)
		return ok
	case KindList:
		vals, ok := asSlice(value)
		if !ok {
			return false
		}
		if len(vals) == 0 {
			// "empty list conforms to any list<T>"
			return true
		}
		for _, v := range vals {
			if !Conforms(v, *t.Elem) {
				return false
			}
		}
		return true
	case KindTuple:
		vals, ok := asSlice(value)
		if !ok || len(vals) != len(t.Elems) {
			return false
		}
		for i, e := range t.Elems {
			if !Conforms(vals[i], e) {
				return false
			}
		}
		return true
	case KindStruct:
		s, ok := value.(*StructValue)
		return ok && s != nil && s.Name == t.StructName
	case KindLiteral:
		return literalEquals(value, t.Literal)
	case KindUnion:
		for _, variant := range t.Elems {
			if Conforms(value, variant) {
				return true
			}
		}
		return false
	case KindTagged:
		tv, ok := value.(*Tag)
		if !ok || tv == nil || tv.Name != t.Tag {
			return false
		}
		if t.TaggedElem == nil {
			return len(tv.Args) == 0
		}
		if t.TaggedElem.Kind == KindTuple {
			return Conforms(anySlice(tv.Args), *t.TaggedElem)
		}
		if len(tv.Args) != 1 {
			return false
		}
		return Conforms(tv.Args[0], *t.TaggedElem)
	default:
		return false
	}
}

// StructValue is a nominally-tagged record value; its shape beyond the name
// is opaque to the type system (matched structurally by callers via the
// contract's own code, not by Accord).
type StructValue struct {
	Name   string
	Fields map[string]any
}

// Tag is a tagged-tuple value: an atom head plus zero or more positional
// arguments, e.g. the wire representation of `{increment, 3}`.
type Tag struct {
	Name string
	Args []any
}

func anySlice(args []any) []any { return args }

func asInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	default:
		return 0, false
	}
}

func asSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case nil:
		return nil, false
	default:
		return nil, false
	}
}

func literalEquals(a, b any) bool {
	return a == b
}
