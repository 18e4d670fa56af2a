// ABOUTME: Main entry point for the FitCoach MCP server with stdio transport
// ABOUTME: Initializes stores, the retrieval pipeline, and all MCP tools
package main

import (
	"log"
	"path/filepath"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/fitstack/fitcoach/internal/config"
	"github.com/fitstack/fitcoach/internal/core"
	"github.com/fitstack/fitcoach/internal/index"
	"github.com/fitstack/fitcoach/internal/llm"
	"github.com/fitstack/fitcoach/internal/mcp"
	"github.com/fitstack/fitcoach/internal/store"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := store.Open(filepath.Join(cfg.DataDir, "fitcoach.db"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	indexPath := filepath.Join(cfg.DataDir, "index.gob")
	ix, err := index.Load(indexPath, index.MetricCosine)
	if err != nil {
		log.Fatalf("Failed to load vector index: %v", err)
	}

	coach := core.NewCoach(cfg, llm.New(cfg), ix)

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"FitCoach Knowledge Server",
		"0.1.0",
	)

	// Register MCP tools
	mcp.RegisterTools(server, coach,
		store.NewConversationStore(db),
		store.NewTurnStore(db),
		store.NewDocumentStore(db),
		cfg.MaxHistoryTurns)

	// Start server with stdio transport
	log.Println("FitCoach MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	if err := ix.Save(indexPath); err != nil {
		log.Printf("Warning: failed to save vector index: %v", err)
	}
}
