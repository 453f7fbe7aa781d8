// ABOUTME: Tests for MCP tool handlers
// ABOUTME: Verifies argument validation and JSON result payloads

package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/bjorgsun/companion-core/internal/config"
	"github.com/bjorgsun/companion-core/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		DataRoot:           root,
		MemoryPath:         filepath.Join(root, "memory.json"),
		ExportsDir:         filepath.Join(root, "memory_exports"),
		UsersDir:           filepath.Join(root, "users"),
		PreferencesLogPath: filepath.Join(root, "preferences_log.json"),
		IssueLogPath:       filepath.Join(root, "logs", "issues.log"),
		CacheHistory:       100,
		OwnerHandle:        "owner",
	}
	c, err := core.New(cfg)
	if err != nil {
		t.Fatalf("core.New() error = %v", err)
	}
	t.Cleanup(c.Shutdown)

	server := mcpserver.NewMCPServer("test", "0.0.0")
	return RegisterTools(server, c)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func TestLogTurnHandler(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.LogTurn(context.Background(), callRequest(map[string]any{
		"role":    "user",
		"content": "hello from the bridge",
	}))
	if err != nil {
		t.Fatalf("LogTurn() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("LogTurn() returned tool error: %s", resultText(t, result))
	}

	var payload struct {
		Appended bool `json:"appended"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if !payload.Appended {
		t.Error("appended = false, want true")
	}
}

func TestLogTurnHandler_MissingArgs(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.LogTurn(context.Background(), callRequest(map[string]any{
		"role": "user",
	}))
	if err != nil {
		t.Fatalf("LogTurn() error = %v, want tool error instead", err)
	}
	if !result.IsError {
		t.Error("IsError = false, want tool error for missing content")
	}
}

func TestSearchMemoriesHandler(t *testing.T) {
	h := newTestHandlers(t)

	_, _ = h.LogTurn(context.Background(), callRequest(map[string]any{
		"role": "assistant", "content": "the greenhouse needs watering",
	}))

	result, err := h.SearchMemories(context.Background(), callRequest(map[string]any{
		"query": "greenhouse",
	}))
	if err != nil || result.IsError {
		t.Fatalf("SearchMemories() err = %v, IsError = %v", err, result.IsError)
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.Count != 1 {
		t.Errorf("count = %d, want 1", payload.Count)
	}
}

func TestLearnFromTextHandler(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.LearnFromText(context.Background(), callRequest(map[string]any{
		"text": "I like mango sorbet",
		"user": "Kira",
	}))
	if err != nil || result.IsError {
		t.Fatalf("LearnFromText() err = %v", err)
	}

	var payload struct {
		Learned bool `json:"learned"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if !payload.Learned {
		t.Error("learned = false, want true")
	}
}

func TestSetRelationshipHandler_UnknownStatus(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.SetRelationship(context.Background(), callRequest(map[string]any{
		"user":   "Kira",
		"status": "archnemesis",
	}))
	if err != nil {
		t.Fatalf("SetRelationship() error = %v", err)
	}
	var payload struct {
		Stored bool `json:"stored"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.Stored {
		t.Error("stored = true, want false for unknown status")
	}
}

func TestProcessApologyHandler(t *testing.T) {
	h := newTestHandlers(t)

	_, _ = h.RegisterIncident(context.Background(), callRequest(map[string]any{
		"user": "Kira", "reason": "shouted", "severity": "low",
	}))
	result, err := h.ProcessApology(context.Background(), callRequest(map[string]any{
		"user": "Kira",
	}))
	if err != nil || result.IsError {
		t.Fatalf("ProcessApology() err = %v", err)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.Status != "forgiven" {
		t.Errorf("status = %q, want forgiven", payload.Status)
	}
}

func TestSetPersistenceHandler(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.SetPersistence(context.Background(), callRequest(map[string]any{
		"enabled": false,
	}))
	if err != nil || result.IsError {
		t.Fatalf("SetPersistence() err = %v", err)
	}
}
