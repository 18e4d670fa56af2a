// ABOUTME: CLI commands for managing stored conversations
// ABOUTME: List, show, and delete chat threads
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fitstack/fitcoach/internal/models"
)

// NewConversationsCmd creates the conversations command group
func NewConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Manage stored conversations",
	}

	cmd.AddCommand(newConversationsListCmd())
	cmd.AddCommand(newConversationsShowCmd())
	cmd.AddCommand(newConversationsDeleteCmd())

	return cmd
}

func newConversationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all conversations",
		RunE:  runConversationsList,
	}
}

func runConversationsList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	convs, err := a.conversations.ListAll()
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}

	if len(convs) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No conversations found")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(convs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TITLE\tTURNS\tUPDATED\tID\n")
	fmt.Fprintf(w, "-----\t-----\t-------\t--\n")
	for _, conv := range convs {
		title := conv.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			truncate(title, 40), conv.TurnCount, formatTime(conv.UpdatedAt), conv.ConversationID)
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d conversation(s)\n", len(convs))
	}

	return nil
}

func newConversationsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Show a conversation's turns",
		Args:  cobra.ExactArgs(1),
		RunE:  runConversationsShow,
	}
}

func runConversationsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	conv, err := a.conversations.Get(args[0])
	if err != nil {
		return fmt.Errorf("loading conversation: %w", err)
	}
	if conv == nil {
		return fmt.Errorf("conversation %s not found", args[0])
	}

	turns, err := a.turns.GetByConversation(conv.ConversationID)
	if err != nil {
		return fmt.Errorf("loading turns: %w", err)
	}

	if outputFormat == "json" {
		view := models.ConversationView{ConversationID: conv.ConversationID, Turns: turns}
		jsonData, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	out := cmd.OutOrStdout()
	title := conv.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintln(out, coachStyle.Render(title))
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%s, %d turns, updated %s",
		conv.ConversationID, conv.TurnCount, formatTime(conv.UpdatedAt))))
	fmt.Fprintln(out)

	for _, turn := range turns {
		prefix := userStyle.Render("you> ")
		if turn.Role == models.RoleAssistant {
			prefix = coachStyle.Render("coach> ")
		}
		fmt.Fprintf(out, "%s%s\n", prefix, turn.Content)
		if verbose && len(turn.Sources) > 0 {
			for i, src := range turn.Sources {
				fmt.Fprintf(out, "  %s\n",
					sourceStyle.Render(fmt.Sprintf("[%d] %s (relevance %.2f)", i+1, src.Origin, src.Score)))
			}
		}
	}

	return nil
}

func newConversationsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <conversation-id>",
		Short: "Delete a conversation and its turns",
		Args:  cobra.ExactArgs(1),
		RunE:  runConversationsDelete,
	}
}

func runConversationsDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	conv, err := a.conversations.Get(args[0])
	if err != nil {
		return fmt.Errorf("loading conversation: %w", err)
	}
	if conv == nil {
		return fmt.Errorf("conversation %s not found", args[0])
	}

	if err := a.conversations.Delete(conv.ConversationID); err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("Deleted"), conv.ConversationID)
	}

	return nil
}
