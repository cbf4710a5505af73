package ir

import "testing"

import "github.com/stretchr/testify/require"

func TestConformsPrimitives(t *testing.T) {
	require.True(t, Conforms(int64(1), PosInteger()))
	require.False(t, Conforms(int64(0), PosInteger()))
	require.True(t, Conforms(int64(0), NonNegInteger()))
	require.False(t, Conforms(int64(-1), NonNegInteger()))
	require.True(t, Conforms("ok", Atom()))
	require.True(t, Conforms(true, Boolean()))
	require.True(t, Conforms("héllo", StringT()))
}

func TestConformsList(t *testing.T) {
	listT := List(Integer())
	require.True(t, Conforms([]any{}, listT), "empty list conforms to any list<T>")
	require.True(t, Conforms([]any{int64(1), int64(2)}, listT))
	require.False(t, Conforms([]any{"x"}, listT))
}

func TestConformsUnionFlattensNested(t *testing.T) {
	nested := Union(Union(Integer(), Boolean()), StringT())
	require.Len(t, nested.Elems, 3)
	require.True(t, Conforms(int64(1), nested))
	require.True(t, Conforms(true, nested))
	require.True(t, Conforms("x", nested))
	require.False(t, Conforms(1.5, nested))
}

func TestConformsTagged(t *testing.T) {
	ty := Tagged("increment", PosInteger())
	require.True(t, Conforms(&Tag{Name: "increment", Args: []any{int64(3)}}, ty))
	require.False(t, Conforms(&Tag{Name: "increment", Args: []any{int64(0)}}, ty))
	require.False(t, Conforms(&Tag{Name: "stop", Args: []any{int64(3)}}, ty))
}

func TestConformsLiteral(t *testing.T) {
	ty := Literal("ok")
	require.True(t, Conforms("ok", ty))
	require.False(t, Conforms("nope", ty))
}

func TestRenderDeterministic(t *testing.T) {
	ty := Union(Tagged("ok", Integer()), Literal("stopped"))
	require.Equal(t, Render(ty), Render(ty))
	require.Contains(t, Render(ty), "tagged<ok, integer>")
}
