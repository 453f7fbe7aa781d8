// ABOUTME: MCP tool definitions exposing the companion core to external collaborators
// ABOUTME: The HUD, speech loop, and Discord bridge consume these over stdio
package mcp

import (
	"github.com/bjorgsun/companion-core/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all companion tools with the server
func RegisterTools(server *mcpserver.MCPServer, c *core.Core) *Handlers {
	handlers := &Handlers{core: c}

	server.AddTool(mcp.Tool{
		Name:        "log_turn",
		Description: "Append a conversation turn to the companion's memory and persist it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"role": map[string]interface{}{
					"type":        "string",
					"description": "Turn role: user, assistant, or system",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Turn content",
				},
			},
			Required: []string{"role", "content"},
		},
	}, handlers.LogTurn)

	server.AddTool(mcp.Tool{
		Name:        "search_memories",
		Description: "Retrieve past turns whose content matches every term of the query.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"max_hits": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchMemories)

	server.AddTool(mcp.Tool{
		Name:        "learn_from_text",
		Description: "Extract allow-listed facts from a user utterance into their profile.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "The user utterance",
				},
				"user": map[string]interface{}{
					"type":        "string",
					"description": "User handle; defaults to the owner",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.LearnFromText)

	server.AddTool(mcp.Tool{
		Name:        "summarize_user",
		Description: "Get a short summary of what the companion knows about a user.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user": map[string]interface{}{
					"type":        "string",
					"description": "User handle; defaults to the owner",
				},
			},
		},
	}, handlers.SummarizeUser)

	server.AddTool(mcp.Tool{
		Name:        "set_relationship",
		Description: "Assign a relationship status to a user. Father assignment to non-owners requires a verified override.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user": map[string]interface{}{
					"type":        "string",
					"description": "User handle",
				},
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Relationship status",
				},
			},
			Required: []string{"user", "status"},
		},
	}, handlers.SetRelationship)

	server.AddTool(mcp.Tool{
		Name:        "record_interaction",
		Description: "Record an interaction with a user, applying relationship auto-promotion.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user": map[string]interface{}{
					"type":        "string",
					"description": "User handle; defaults to the owner",
				},
				"mentioned": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the companion was addressed directly",
				},
			},
		},
	}, handlers.RecordInteraction)

	server.AddTool(mcp.Tool{
		Name:        "register_incident",
		Description: "Flag a pending guardian incident for a user.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user": map[string]interface{}{
					"type":        "string",
					"description": "User handle; defaults to the owner",
				},
				"reason": map[string]interface{}{
					"type":        "string",
					"description": "Incident reason",
				},
				"severity": map[string]interface{}{
					"type":        "string",
					"description": "Incident severity",
				},
			},
		},
	}, handlers.RegisterIncident)

	server.AddTool(mcp.Tool{
		Name:        "process_apology",
		Description: "Resolve a pending incident against the user's forgiveness budget.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user": map[string]interface{}{
					"type":        "string",
					"description": "User handle; defaults to the owner",
				},
			},
		},
	}, handlers.ProcessApology)

	server.AddTool(mcp.Tool{
		Name:        "export_snapshot",
		Description: "Write a timestamped export of the companion's memory.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"label": map[string]interface{}{
					"type":        "string",
					"description": "Optional label appended to the export filename",
				},
			},
		},
	}, handlers.ExportSnapshot)

	server.AddTool(mcp.Tool{
		Name:        "set_persistence",
		Description: "Toggle conversation-log persistence. Memory keeps accumulating in memory when off.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"enabled": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether saves should run",
				},
			},
			Required: []string{"enabled"},
		},
	}, handlers.SetPersistence)

	return handlers
}
