// ABOUTME: Main entry point for the companion core MCP server with stdio transport
// ABOUTME: Initializes config, the core, and all collaborator-facing tools
package main

import (
	"log"

	"github.com/bjorgsun/companion-core/internal/config"
	"github.com/bjorgsun/companion-core/internal/core"
	"github.com/bjorgsun/companion-core/internal/mcp"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func main() {
	// Load .env file if it exists (for owner identity and API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	c, err := core.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize companion core: %v", err)
	}
	defer c.Shutdown()

	server := mcpserver.NewMCPServer(
		"Bjorgsun-26 Companion Core",
		"0.1.0",
	)
	mcp.RegisterTools(server, c)

	log.Println("Companion core MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
