// ABOUTME: CLI commands for managing the knowledge base
// ABOUTME: Add, search, list, stats, remove, clear, and bulk directory init
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fitstack/fitcoach/internal/core"
	"github.com/fitstack/fitcoach/internal/models"
	"github.com/fitstack/fitcoach/internal/store"
)

var (
	knowledgeAddFile   string
	knowledgeAddOrigin string
	knowledgeAddID     string
	knowledgeLimit     int
)

// NewKnowledgeCmd creates the knowledge command group
func NewKnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Manage the knowledge base",
		Long: `Manage the documents the coach grounds its answers in.

Documents are chunked, embedded, and indexed; re-adding a document ID
replaces the previous version.`,
	}

	cmd.AddCommand(newKnowledgeAddCmd())
	cmd.AddCommand(newKnowledgeSearchCmd())
	cmd.AddCommand(newKnowledgeListCmd())
	cmd.AddCommand(newKnowledgeStatsCmd())
	cmd.AddCommand(newKnowledgeRemoveCmd())
	cmd.AddCommand(newKnowledgeClearCmd())
	cmd.AddCommand(newKnowledgeInitCmd())

	return cmd
}

func newKnowledgeAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a document to the knowledge base",
		Long: `Add a document from text, a file, or stdin.

Examples:
  fitcoach knowledge add "Deload every 4-6 weeks of hard training."
  fitcoach knowledge add --file squat-guide.md
  cat notes.txt | fitcoach knowledge add --origin notes.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runKnowledgeAdd,
	}

	cmd.Flags().StringVar(&knowledgeAddFile, "file", "", "Read document from file")
	cmd.Flags().StringVar(&knowledgeAddOrigin, "origin", "", "Source label (defaults to the filename)")
	cmd.Flags().StringVar(&knowledgeAddID, "id", "", "Stable document ID (defaults to a generated one)")

	return cmd
}

func runKnowledgeAdd(cmd *cobra.Command, args []string) error {
	var text string
	origin := knowledgeAddOrigin

	if knowledgeAddFile != "" {
		data, err := os.ReadFile(knowledgeAddFile)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		text = string(data)
		if origin == "" {
			origin = filepath.Base(knowledgeAddFile)
		}
	} else if len(args) > 0 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text provided")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := models.NewDocument(knowledgeAddID, origin, text)
	if err != nil {
		return err
	}

	chunks, err := a.coach.IngestDocument(ctx, doc.DocumentID, doc.Origin, doc.Text)
	if err != nil {
		return err
	}

	if err := a.documents.Record(&store.DocumentRecord{
		DocumentID: doc.DocumentID,
		Origin:     doc.Origin,
		ChunkCount: chunks,
		CharCount:  len([]rune(doc.Text)),
	}); err != nil {
		return fmt.Errorf("recording document: %w", err)
	}
	if err := a.saveIndex(); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d chunks)\n",
			okStyle.Render("Indexed"), doc.Origin, chunks)
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "Document ID: %s\n", doc.DocumentID)
		}
	}

	return nil
}

func newKnowledgeSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long: `Search the knowledge base by semantic similarity.

Examples:
  fitcoach knowledge search "squat depth"
  fitcoach knowledge search --limit 10 "protein intake"
  fitcoach knowledge search --format json "rest days"`,
		Args: cobra.ExactArgs(1),
		RunE: runKnowledgeSearch,
	}

	cmd.Flags().IntVar(&knowledgeLimit, "limit", 5, "Maximum results to return")

	return cmd
}

func runKnowledgeSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(knowledgeLimit, "limit"); err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	passages, err := a.coach.Search(ctx, args[0], knowledgeLimit)
	if err != nil {
		return err
	}

	if len(passages) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching passages found")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(passages, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\tSCORE\tORIGIN\tTEXT\n")
	fmt.Fprintf(w, "----\t-----\t------\t----\n")
	for _, p := range passages {
		fmt.Fprintf(w, "%d\t%.3f\t%s\t%s\n",
			p.Rank, p.Score, truncate(p.Entry.Origin, 25), truncate(p.Entry.Text, 60))
	}
	w.Flush()

	return nil
}

func newKnowledgeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		RunE:  runKnowledgeList,
	}
}

func runKnowledgeList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	recs, err := a.documents.ListAll()
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(recs) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "Knowledge base is empty")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(recs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ORIGIN\tCHUNKS\tCHARS\tINGESTED\tDOCUMENT ID\n")
	fmt.Fprintf(w, "------\t------\t-----\t--------\t-----------\n")
	for _, rec := range recs {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
			truncate(rec.Origin, 30), rec.ChunkCount, rec.CharCount,
			formatTime(rec.IngestedAt), truncate(rec.DocumentID, 25))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d document(s)\n", len(recs))
	}

	return nil
}

func newKnowledgeStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge base statistics",
		RunE:  runKnowledgeStats,
	}
}

func runKnowledgeStats(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	stats := a.coach.Stats()

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Documents:       %d\n", stats.Documents)
	fmt.Fprintf(out, "Chunks:          %d\n", stats.Chunks)
	fmt.Fprintf(out, "Dimension:       %d\n", stats.Dimension)
	fmt.Fprintf(out, "Embedding model: %s\n", stats.EmbeddingModel)
	fmt.Fprintf(out, "Chat model:      %s\n", stats.ChatModel)

	return nil
}

func newKnowledgeRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <document-id>",
		Short: "Remove a document from the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE:  runKnowledgeRemove,
	}
}

func runKnowledgeRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	documentID := args[0]
	rec, err := a.documents.Get(documentID)
	if err != nil {
		return fmt.Errorf("loading registry entry: %w", err)
	}

	removed := a.coach.RemoveDocument(documentID)
	if removed == 0 && rec == nil {
		return fmt.Errorf("document %s not found", documentID)
	}

	if err := a.documents.Delete(documentID); err != nil {
		return fmt.Errorf("removing registry entry: %w", err)
	}
	if err := a.saveIndex(); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d chunks)\n",
			okStyle.Render("Removed"), documentID, removed)
	}

	return nil
}

func newKnowledgeClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all documents from the knowledge base",
		RunE:  runKnowledgeClear,
	}
}

func runKnowledgeClear(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	a.coach.ClearKnowledge()
	if err := a.documents.Clear(); err != nil {
		return fmt.Errorf("clearing registry: %w", err)
	}
	if err := a.saveIndex(); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Knowledge base cleared"))
	}

	return nil
}

func newKnowledgeInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <directory>",
		Short: "Bulk-ingest a directory of documents",
		Long: `Walk a directory and ingest every .md and .txt file.

File paths relative to the directory become the document IDs, so
re-running init after edits replaces changed documents in place.

Examples:
  fitcoach knowledge init ./docs`,
		Args: cobra.ExactArgs(1),
		RunE: runKnowledgeInit,
	}
}

func runKnowledgeInit(cmd *cobra.Command, args []string) error {
	root := args[0]

	docs, err := collectDocuments(root)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no .md or .txt files found under %s", root)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := a.coach.IngestAll(ctx, docs)

	out := cmd.OutOrStdout()
	var ok, failed int
	for i, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", errorStyle.Render("Failed"), res.Origin, res.Err)
			continue
		}
		ok++
		if err := a.documents.Record(&store.DocumentRecord{
			DocumentID: docs[i].ID,
			Origin:     res.Origin,
			ChunkCount: res.Chunks,
			CharCount:  len([]rune(docs[i].Text)),
		}); err != nil {
			return fmt.Errorf("recording %s: %w", res.Origin, err)
		}
		if verbose {
			fmt.Fprintf(out, "%s %s (%d chunks)\n", okStyle.Render("Indexed"), res.Origin, res.Chunks)
		}
	}

	if err := a.saveIndex(); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(out, "%s %d document(s) indexed, %d failed\n",
			okStyle.Render("Done:"), ok, failed)
	}
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed to ingest", failed)
	}

	return nil
}

// collectDocuments gathers .md and .txt files under root for ingestion.
func collectDocuments(root string) ([]core.DocumentInput, error) {
	var docs []core.DocumentInput

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".txt" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}

		docs = append(docs, core.DocumentInput{
			ID:     rel,
			Origin: rel,
			Text:   string(data),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return docs, nil
}
