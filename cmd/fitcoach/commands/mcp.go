// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to use the coach's knowledge tools via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/fitstack/fitcoach/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs FitCoach as an MCP (Model Context Protocol) server, exposing
ask, search_knowledge, add_knowledge, and knowledge_stats tools
over stdio.`,
		RunE: runMCPServe,
		Example: `  # Start MCP server (typically launched by the agent host)
  fitcoach mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "fitcoach": {
  #       "command": "fitcoach",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCPServe starts the MCP server and blocks until shutdown.
func runMCPServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	server := mcpserver.NewMCPServer(
		"FitCoach Knowledge Server",
		versionInfo.Version,
	)

	mcp.RegisterTools(server, a.coach, a.conversations, a.turns, a.documents, a.cfg.MaxHistoryTurns)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("FitCoach MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}
	case serveErr = <-serverErr:
	}

	if err := finishMCPServe(a, serveErr); err != nil {
		return err
	}

	if !quiet {
		log.Println("Shutdown complete")
	}

	return nil
}

// finishMCPServe persists the index on the way out. add_knowledge mutates
// only the in-memory index, so both the signal path and a stdin close must
// snapshot before exit.
func finishMCPServe(a *app, serveErr error) error {
	if err := a.saveIndex(); err != nil {
		log.Printf("Warning: %v", err)
	}
	if serveErr != nil {
		return fmt.Errorf("server error: %w", serveErr)
	}
	return nil
}
