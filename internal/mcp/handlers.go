// ABOUTME: MCP tool handler implementations over the companion core
// ABOUTME: Invalid arguments become tool errors, never transport errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bjorgsun/companion-core/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all companion tools
type Handlers struct {
	core *core.Core
}

// LogTurn handles the log_turn tool
func (h *Handlers) LogTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	role, err := request.RequireString("role")
	if err != nil {
		return mcp.NewToolResultError("role argument is required and must be a string"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}

	appended := h.core.LogTurn(role, content)
	return jsonResult(map[string]interface{}{"appended": appended})
}

// SearchMemories handles the search_memories tool
func (h *Handlers) SearchMemories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	maxHits := request.GetInt("max_hits", 5)

	hits := h.core.SearchMemories(query, maxHits)
	return jsonResult(map[string]interface{}{
		"hits":  hits,
		"count": len(hits),
	})
}

// LearnFromText handles the learn_from_text tool
func (h *Handlers) LearnFromText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	user := request.GetString("user", "")

	learned := h.core.LearnFromText(text, user)
	return jsonResult(map[string]interface{}{"learned": learned})
}

// SummarizeUser handles the summarize_user tool
func (h *Handlers) SummarizeUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := request.GetString("user", "")
	return jsonResult(map[string]interface{}{
		"summary": h.core.SummarizeUser(user, 3),
	})
}

// SetRelationship handles the set_relationship tool
func (h *Handlers) SetRelationship(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := request.RequireString("user")
	if err != nil {
		return mcp.NewToolResultError("user argument is required and must be a string"), nil
	}
	status, err := request.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError("status argument is required and must be a string"), nil
	}

	stored := h.core.SetRelationship(user, status)
	return jsonResult(map[string]interface{}{
		"stored":       stored,
		"relationship": h.core.GetRelationship(user),
	})
}

// RecordInteraction handles the record_interaction tool
func (h *Handlers) RecordInteraction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := request.GetString("user", "")
	mentioned := request.GetBool("mentioned", false)

	total := h.core.RecordInteraction(user, 1, mentioned)
	return jsonResult(map[string]interface{}{
		"interactions": total,
		"relationship": h.core.GetRelationship(user),
	})
}

// RegisterIncident handles the register_incident tool
func (h *Handlers) RegisterIncident(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := request.GetString("user", "")
	reason := request.GetString("reason", "")
	severity := request.GetString("severity", "")

	h.core.GuardianRegisterIncident(user, reason, severity)
	return jsonResult(map[string]interface{}{"pending": true})
}

// ProcessApology handles the process_apology tool
func (h *Handlers) ProcessApology(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := request.GetString("user", "")
	result := h.core.ProcessApology(user, "")
	return jsonResult(result)
}

// ExportSnapshot handles the export_snapshot tool
func (h *Handlers) ExportSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label := request.GetString("label", "")
	path, ok := h.core.ExportSnapshot(label)
	if !ok {
		return mcp.NewToolResultError("snapshot export failed; see the issue log"), nil
	}
	return jsonResult(map[string]interface{}{"path": path})
}

// SetPersistence handles the set_persistence tool
func (h *Handlers) SetPersistence(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	enabled := request.GetBool("enabled", true)
	h.core.SetPersistence(enabled)
	return jsonResult(map[string]interface{}{"persistence": h.core.Persistence()})
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
