package contracts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLockIsRegisteredByDefault(t *testing.T) {
	i, err := Global().Get("lock")
	require.NoError(t, err)
	require.Equal(t, "lock", i.ProtocolName)
}

func TestGetUnknownNameErrors(t *testing.T) {
	_, err := Global().Get("does-not-exist")
	require.Error(t, err)
}

func TestNamesIsSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("zebra", Lock())
	r.Register("apple", Lock())
	require.Equal(t, []string{"apple", "zebra"}, r.Names())
}
