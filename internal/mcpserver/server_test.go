package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/accord/pkg/contracts"
)

func toolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestHandleValidateReportsOkForLock(t *testing.T) {
	s := New(contracts.Global())
	result, err := s.handleValidate(context.Background(), toolRequest(map[string]any{"module": "lock"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
}

func TestHandleValidateRejectsUnknownModule(t *testing.T) {
	s := New(contracts.Global())
	result, err := s.handleValidate(context.Background(), toolRequest(map[string]any{"module": "nope"}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestHandlePrintTLAEmitsModuleText(t *testing.T) {
	s := New(contracts.Global())
	result, err := s.handlePrintTLA(context.Background(), toolRequest(map[string]any{"module": "lock"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
}
