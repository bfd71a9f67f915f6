package mcp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/canwork/internal/snapshot"
)

// SnapshotStatus is the snapshot_status tool result
type SnapshotStatus struct {
	Path        string `json:"path"`
	Status      string `json:"status"`
	Entries     int    `json:"entries"`
	Skipped     int    `json:"skipped,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	ModTime     string `json:"mod_time,omitempty"`
}

func newSnapshotStatus(res snapshot.Result) SnapshotStatus {
	st := SnapshotStatus{
		Path:    res.Path,
		Status:  res.Status.String(),
		Entries: len(res.Snapshot),
		Skipped: res.Skipped,
	}
	if res.Fingerprint != 0 {
		st.Fingerprint = fmt.Sprintf("%016x", res.Fingerprint)
	}
	if !res.ModTime.IsZero() {
		st.ModTime = res.ModTime.UTC().Format(time.RFC3339)
	}
	return st
}

func createTextResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}
	return createTextResponse(string(content)), nil
}

// createErrorResponse reports a tool failure inside the result with IsError set,
// so the client model can see it and correct its call
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	response, marshalErr := createJSONResponse(map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}
