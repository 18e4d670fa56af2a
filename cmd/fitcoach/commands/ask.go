// ABOUTME: CLI command for one-shot questions
// ABOUTME: Streams the answer to stdout and prints the cited sources
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fitstack/fitcoach/internal/core"
	"github.com/fitstack/fitcoach/internal/models"
)

var (
	askConversation string
	askNoRAG        bool
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question",
		Long: `Ask the coach one question and print the streamed answer.

The answer is grounded in the knowledge base unless --no-rag is set.
Pass --conversation to continue an existing thread with history.

Examples:
  fitcoach ask "how many rest days per week"
  fitcoach ask --conversation conv_abc123 "and during a deload?"
  fitcoach ask --no-rag "general motivation tips"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringVar(&askConversation, "conversation", "", "Conversation ID to continue")
	cmd.Flags().BoolVar(&askNoRAG, "no-rag", false, "Answer without knowledge base retrieval")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	view := models.ConversationView{}
	if askConversation != "" {
		conv, err := a.conversations.Get(askConversation)
		if err != nil {
			return fmt.Errorf("loading conversation: %w", err)
		}
		if conv == nil {
			return fmt.Errorf("conversation %s not found", askConversation)
		}
		view, err = a.turns.LoadView(askConversation, a.cfg.MaxHistoryTurns)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
	}

	question := args[0]

	var events <-chan core.Event
	var passages []models.RetrievedPassage
	if askNoRAG {
		events, err = a.coach.AskDirect(ctx, view, question)
	} else {
		events, passages, err = a.coach.Ask(ctx, view, question)
	}
	if err != nil {
		return err
	}

	answer, sources, genErr := streamToTerminal(cmd, events)
	if genErr != nil {
		return genErr
	}

	if !quiet && len(passages) > 0 {
		printSources(cmd, sources)
	}

	if askConversation != "" {
		if err := persistExchange(a, askConversation, question, answer, sources); err != nil {
			return fmt.Errorf("saving turns: %w", err)
		}
	}

	return nil
}

// streamToTerminal drains a generation stream, printing deltas as they
// arrive. It returns the full answer and the citations.
func streamToTerminal(cmd *cobra.Command, events <-chan core.Event) (string, []models.SourceRef, error) {
	var answer strings.Builder
	var sources []models.SourceRef

	for ev := range events {
		switch ev.Type {
		case core.EventTextDelta:
			fmt.Fprint(cmd.OutOrStdout(), ev.Text)
			answer.WriteString(ev.Text)
		case core.EventCitation:
			sources = append(sources, *ev.Citation)
		case core.EventDone:
			fmt.Fprintln(cmd.OutOrStdout())
		case core.EventError:
			fmt.Fprintln(cmd.OutOrStdout())
			return answer.String(), sources, fmt.Errorf("generation failed: %w", ev.Err)
		}
	}

	return answer.String(), sources, nil
}

// printSources lists the passages that grounded the answer.
func printSources(cmd *cobra.Command, sources []models.SourceRef) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Sources:"))
	for i, src := range sources {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n",
			sourceStyle.Render(fmt.Sprintf("[%d] %s (relevance %.2f)", i+1, src.Origin, src.Score)))
	}
}

// persistExchange appends the question and answer to the conversation.
func persistExchange(a *app, conversationID, question, answer string, sources []models.SourceRef) error {
	userTurn, err := models.NewTurn(models.RoleUser, question, nil)
	if err != nil {
		return err
	}
	if err := a.turns.Append(conversationID, userTurn); err != nil {
		return err
	}

	if strings.TrimSpace(answer) == "" {
		return nil
	}
	assistantTurn, err := models.NewTurn(models.RoleAssistant, answer, sources)
	if err != nil {
		return err
	}
	return a.turns.Append(conversationID, assistantTurn)
}
