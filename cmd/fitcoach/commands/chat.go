// ABOUTME: Interactive chat REPL with the fitness coach
// ABOUTME: Streams answers, keeps conversation history, and cites sources
package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fitstack/fitcoach/internal/models"
)

var (
	chatConversation string
	chatNoRAG        bool
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive coaching session",
		Long: `Start an interactive chat session with the coach.

Every exchange is stored; --conversation resumes an earlier thread.
Type /help inside the session for commands.

Examples:
  fitcoach chat
  fitcoach chat --conversation conv_abc123
  fitcoach chat --no-rag`,
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatConversation, "conversation", "", "Conversation ID to resume")
	cmd.Flags().BoolVar(&chatNoRAG, "no-rag", false, "Answer without knowledge base retrieval")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conv, err := resumeOrCreate(a, chatConversation)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !quiet {
		fmt.Fprintln(out, coachStyle.Render("FitCoach"))
		stats := a.coach.Stats()
		if stats.Chunks == 0 && !chatNoRAG {
			fmt.Fprintln(out, mutedStyle.Render("Knowledge base is empty; answers will be general. Run 'fitcoach knowledge init <dir>' to ingest material."))
		} else if !chatNoRAG {
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("Knowledge base: %d documents, %d chunks", stats.Documents, stats.Chunks)))
		}
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("Conversation: %s (/help for commands)", conv.ConversationID)))
		fmt.Fprintln(out)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(out, userStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := handleChatCommand(cmd, a, &conv, line)
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render(err.Error()))
			}
			if done {
				return nil
			}
			continue
		}

		if err := chatExchange(ctx, cmd, a, conv.ConversationID, line); err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
		}
	}
}

// resumeOrCreate loads the requested conversation or starts a fresh one.
func resumeOrCreate(a *app, conversationID string) (*models.Conversation, error) {
	if conversationID == "" {
		return a.conversations.Create("")
	}
	conv, err := a.conversations.Get(conversationID)
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}
	if conv == nil {
		return nil, fmt.Errorf("conversation %s not found", conversationID)
	}
	return conv, nil
}

// chatExchange runs one question through the pipeline and persists both
// sides of the exchange.
func chatExchange(ctx context.Context, cmd *cobra.Command, a *app, conversationID, question string) error {
	view, err := a.turns.LoadView(conversationID, a.cfg.MaxHistoryTurns)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, coachStyle.Render("coach> "))

	var answer string
	var sources []models.SourceRef
	if chatNoRAG {
		events, err := a.coach.AskDirect(ctx, view, question)
		if err != nil {
			fmt.Fprintln(out)
			return err
		}
		answer, sources, err = streamToTerminal(cmd, events)
		if err != nil {
			return err
		}
	} else {
		events, passages, err := a.coach.Ask(ctx, view, question)
		if err != nil {
			fmt.Fprintln(out)
			return err
		}
		answer, sources, err = streamToTerminal(cmd, events)
		if err != nil {
			return err
		}
		if !quiet && len(passages) > 0 {
			printSources(cmd, sources)
		}
	}
	fmt.Fprintln(out)

	return persistExchange(a, conversationID, question, answer, sources)
}

// handleChatCommand processes slash commands. It reports whether the
// session should end.
func handleChatCommand(cmd *cobra.Command, a *app, conv **models.Conversation, line string) (bool, error) {
	out := cmd.OutOrStdout()

	switch strings.Fields(line)[0] {
	case "/help":
		fmt.Fprintln(out, mutedStyle.Render(`Commands:
  /help          show this help
  /history       show this conversation's turns
  /new [title]   start a fresh conversation
  /quit          end the session`))
		return false, nil

	case "/history":
		turns, err := a.turns.GetByConversation((*conv).ConversationID)
		if err != nil {
			return false, fmt.Errorf("loading history: %w", err)
		}
		if len(turns) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("No turns yet."))
			return false, nil
		}
		for _, turn := range turns {
			prefix := userStyle.Render("you> ")
			if turn.Role == models.RoleAssistant {
				prefix = coachStyle.Render("coach> ")
			}
			fmt.Fprintf(out, "%s%s\n", prefix, truncate(turn.Content, 200))
		}
		return false, nil

	case "/new":
		title := strings.TrimSpace(strings.TrimPrefix(line, "/new"))
		fresh, err := a.conversations.Create(title)
		if err != nil {
			return false, fmt.Errorf("creating conversation: %w", err)
		}
		*conv = fresh
		fmt.Fprintln(out, mutedStyle.Render("Started conversation "+fresh.ConversationID))
		return false, nil

	case "/quit", "/exit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q (try /help)", line)
	}
}
