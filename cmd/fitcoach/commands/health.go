// ABOUTME: Health command checks the model server and local storage
// ABOUTME: Reports connectivity and whether the configured models are installed
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewHealthCmd creates the health command
func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the model server and local storage",
		Long: `Check that the model server is reachable and that the configured
embedding and chat models are installed, and report knowledge base state.

Examples:
  fitcoach health
  fitcoach health --format json`,
		RunE: runHealth,
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := a.client.CheckHealth(ctx)
	stats := a.coach.Stats()

	if outputFormat == "json" {
		report := map[string]interface{}{
			"server":          a.cfg.BaseURL,
			"connected":       health.Connected,
			"embedding_model": a.cfg.EmbeddingModel,
			"embedding_ready": health.EmbeddingReady,
			"chat_model":      a.cfg.ChatModel,
			"chat_ready":      health.ChatReady,
			"documents":       stats.Documents,
			"chunks":          stats.Chunks,
		}
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	} else {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Server:          %s %s\n", a.cfg.BaseURL, statusMark(health.Connected))
		fmt.Fprintf(out, "Embedding model: %s %s\n", a.cfg.EmbeddingModel, statusMark(health.EmbeddingReady))
		fmt.Fprintf(out, "Chat model:      %s %s\n", a.cfg.ChatModel, statusMark(health.ChatReady))
		fmt.Fprintf(out, "Knowledge base:  %d documents, %d chunks\n", stats.Documents, stats.Chunks)
		if verbose && len(health.Models) > 0 {
			fmt.Fprintln(out, mutedStyle.Render("Installed models:"))
			for _, m := range health.Models {
				fmt.Fprintf(out, "  %s\n", m)
			}
		}
	}

	if !health.Connected {
		return fmt.Errorf("model server at %s is not reachable", a.cfg.BaseURL)
	}
	if !health.EmbeddingReady || !health.ChatReady {
		return fmt.Errorf("required models are missing (try 'ollama pull %s' / 'ollama pull %s')",
			a.cfg.EmbeddingModel, a.cfg.ChatModel)
	}

	return nil
}

// statusMark renders a pass/fail indicator.
func statusMark(ok bool) string {
	if ok {
		return okStyle.Render("ok")
	}
	return errorStyle.Render("missing")
}
