// Package mcp exposes the canwork check as a Model Context Protocol tool
// served over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/canwork/internal/canwork"
	cwdebug "github.com/standardbeagle/canwork/internal/debug"
	"github.com/standardbeagle/canwork/internal/version"
)

// Tool names
const (
	ToolCanWork        = "canwork"
	ToolSnapshotStatus = "snapshot_status"
)

// CanWorkParams is the input of the canwork tool
type CanWorkParams struct {
	Filename string `json:"filename"`
	Format   string `json:"format,omitempty"` // "text" (default) or "json"
}

// Server wraps an MCP server answering canwork queries
type Server struct {
	server  *mcp.Server
	checker *canwork.Checker
}

// NewServer creates the MCP server and registers its tools
func NewServer(checker *canwork.Checker) *Server {
	s := &Server{
		checker: checker,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "canwork-mcp-server",
			Version: version.Version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        ToolCanWork,
		Description: "Check whether a file is safe to work on: lists who currently has matching files opened in Perforce. Accepts a filename, partial path or full depot path.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"filename": {
					Type:        "string",
					Description: "File reference, e.g. 'L_Lobby.umap', 'Content/Maps/L_Lobby.umap' or a //depot path",
				},
				"format": {
					Type:        "string",
					Description: "Response format: 'text' (default) or 'json'",
					Enum:        []any{"text", "json"},
				},
			},
			Required: []string{"filename"},
		},
	}, s.handleCanWork)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolSnapshotStatus,
		Description: "Report whether the opened-files snapshot exists, how many entries it has and when it last changed.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleSnapshotStatus)
}

func (s *Server) handleCanWork(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolCanWork, func() (*mcp.CallToolResult, error) {
		var params CanWorkParams
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
				return createErrorResponse(ToolCanWork, fmt.Errorf("invalid parameters: %w", err))
			}
		}
		if strings.TrimSpace(params.Filename) == "" {
			return createErrorResponse(ToolCanWork, fmt.Errorf("filename is required"))
		}

		report := s.checker.Check(ctx, params.Filename)
		switch strings.ToLower(params.Format) {
		case "", "text":
			return createTextResponse(report.Text()), nil
		case "json":
			return createJSONResponse(report)
		default:
			return createErrorResponse(ToolCanWork, fmt.Errorf("unknown format %q (use 'text' or 'json')", params.Format))
		}
	})
}

func (s *Server) handleSnapshotStatus(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolSnapshotStatus, func() (*mcp.CallToolResult, error) {
		return createJSONResponse(newSnapshotStatus(s.checker.Status(ctx)))
	})
}

// recoverFromPanic turns a panicking handler into an error result
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[canwork] PANIC RECOVERED in %s: %v\n%s", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error"))
		}
	}()
	return handler()
}

// Start serves over stdio until ctx is done or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	cwdebug.LogServer("starting MCP server with stdio transport\n")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetHandlerForTesting returns a tool handler by name
func (s *Server) GetHandlerForTesting(toolName string) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch toolName {
	case ToolCanWork:
		return s.handleCanWork
	case ToolSnapshotStatus:
		return s.handleSnapshotStatus
	default:
		return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return createErrorResponse("GetHandlerForTesting", fmt.Errorf("unknown tool: %s", toolName))
		}
	}
}
