package check

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ternarybob/accord/pkg/contracts"
)

func TestPrintTLAEmitsModuleAndCfgForLock(t *testing.T) {
	out, err := PrintTLA(contracts.Lock())
	require.NoError(t, err)
	require.True(t, out.Validation.Accepted)
	require.Contains(t, out.TLAText, "MODULE lock")
	require.Contains(t, out.CfgText, "INVARIANTS")
}

func TestValidateAcceptsLock(t *testing.T) {
	result := Validate(contracts.Lock())
	require.True(t, result.Accepted)
	require.Empty(t, result.FailedAt)
}
