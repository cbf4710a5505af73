// Package mcpserver exposes Accord's validate/print_tla/check operations
// as MCP tools, grounded on the teacher's index/mcp_server.go: one
// mark3labs/mcp-go server, one AddTool call per operation, one handler
// method per tool.
package mcpserver

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ternarybob/accord/pkg/check"
	"github.com/ternarybob/accord/pkg/contracts"
	"github.com/ternarybob/accord/pkg/ir/validate"
)

// Server wraps a contracts.Registry to provide MCP tool access.
type Server struct {
	registry *contracts.Registry
	server   *server.MCPServer
}

// New creates a new MCP server bound to registry.
func New(registry *contracts.Registry) *Server {
	s := &Server{registry: registry}

	mcpServer := server.NewMCPServer(
		"accord",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)
	s.server = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("validate",
			mcp.WithDescription("Run the validation pipeline over a registered protocol contract and report diagnostics."),
			mcp.WithString("module",
				mcp.Required(),
				mcp.Description("Registered contract name (e.g. 'lock')"),
			),
		),
		s.handleValidate,
	)

	mcpServer.AddTool(
		mcp.NewTool("print_tla",
			mcp.WithDescription("Validate a registered protocol contract and emit its TLA+ module and .cfg file."),
			mcp.WithString("module",
				mcp.Required(),
				mcp.Description("Registered contract name (e.g. 'lock')"),
			),
		),
		s.handlePrintTLA,
	)

	mcpServer.AddTool(
		mcp.NewTool("check",
			mcp.WithDescription("Validate, compile, and model-check a registered protocol contract with TLC."),
			mcp.WithString("module",
				mcp.Required(),
				mcp.Description("Registered contract name (e.g. 'lock')"),
			),
			mcp.WithNumber("workers",
				mcp.Description("TLC worker count (default: let TLC pick)"),
			),
			mcp.WithNumber("timeout_seconds",
				mcp.Description("TLC timeout in seconds (default: 300)"),
			),
		),
		s.handleCheck,
	)
}

func (s *Server) resolve(request mcp.CallToolRequest) (string, error) {
	name := request.GetString("module", "")
	if name == "" {
		return "", fmt.Errorf("module parameter is required")
	}
	return name, nil
}

func (s *Server) handleValidate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := s.resolve(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	i, err := s.registry.Get(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := check.Validate(i)
	return mcp.NewToolResultText(formatValidation(result)), nil
}

func (s *Server) handlePrintTLA(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := s.resolve(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	i, err := s.registry.Get(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := check.PrintTLA(i)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%v\n%s", err, formatValidation(out.Validation))), nil
	}

	return mcp.NewToolResultText(out.TLAText + "\n----\n" + out.CfgText), nil
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := s.resolve(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	i, err := s.registry.Get(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dir, err := check.DefaultWorkdir(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create workdir: %v", err)), nil
	}
	defer os.RemoveAll(dir)

	opts := check.Options{
		Workers:     request.GetInt("workers", 0),
		TimeoutSecs: request.GetInt("timeout_seconds", 300),
	}

	out, err := check.Run(ctx, i, dir, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%v\n%s", err, formatValidation(out.Validation))), nil
	}

	if out.TLC == nil || out.TLC.Ok {
		return mcp.NewToolResultText(fmt.Sprintf("%s: ok (%d distinct states)", name, out.TLC.Stats.DistinctStates)), nil
	}

	v := out.TLC.Violation
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s violated (%s), %d trace step(s)", name, v.Kind, v.Property, len(v.Trace))), nil
}

func formatValidation(result validate.Result) string {
	if result.Accepted && len(result.Diags) == 0 {
		return "ok: no diagnostics"
	}
	out := fmt.Sprintf("accepted=%v", result.Accepted)
	if result.FailedAt != "" {
		out += fmt.Sprintf(" failed_at=%s", result.FailedAt)
	}
	for _, d := range result.Diags {
		out += "\n  " + d.String()
	}
	return out
}

// ServeStdio starts the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.server)
}
