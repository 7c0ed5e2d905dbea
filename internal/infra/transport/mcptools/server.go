// Package mcptools exposes the analysis service as MCP tools over stdio.
package mcptools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mark47B/opspilot/internal/domain/usecase"
)

const (
	serverName = "opspilot"
	Version    = "1.0.0"
)

// NewServer registers every tool backed by svc.
func NewServer(svc usecase.Service) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Workflow health analysis: score a repository/team, list bottlenecks and draft an SOP."),
	)

	analyze := NewAnalyzeTool(svc)
	s.AddTool(analyze.Definition(), analyze.Handle)

	summary := NewDashboardTool(svc)
	s.AddTool(summary.Definition(), summary.Handle)

	report := NewReportTool(svc)
	s.AddTool(report.Definition(), report.Handle)

	return s
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// intArg extracts an integer argument; JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
