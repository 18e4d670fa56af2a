// ABOUTME: Root CLI command and global flags for the fitness coach
// ABOUTME: Wires all subcommands and the verbose/quiet/format flags
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
███████╗██╗████████╗ ██████╗ ██████╗  █████╗  ██████╗██╗  ██╗
██╔════╝██║╚══██╔══╝██╔════╝██╔═══██╗██╔══██╗██╔════╝██║  ██║
█████╗  ██║   ██║   ██║     ██║   ██║███████║██║     ███████║
██╔══╝  ██║   ██║   ██║     ██║   ██║██╔══██║██║     ██╔══██║
██║     ██║   ██║   ╚██████╗╚██████╔╝██║  ██║╚██████╗██║  ██║
╚═╝     ╚═╝   ╚═╝    ╚═════╝ ╚═════╝ ╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝`

// NewRootCmd creates the root command with all subcommands
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fitcoach",
		Short: "AI fitness coach grounded in your own knowledge base",
		Long: banner + `

FitCoach answers training, nutrition, and recovery questions using a
local knowledge base. Documents are chunked, embedded, and searched by
semantic similarity; answers stream from a local Ollama model and cite
the passages that grounded them.

Quick start:
  fitcoach knowledge init ./docs    # ingest your training material
  fitcoach chat                     # start coaching`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, json, table)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Subcommands
	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewKnowledgeCmd())
	cmd.AddCommand(NewConversationsCmd())
	cmd.AddCommand(NewHealthCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
