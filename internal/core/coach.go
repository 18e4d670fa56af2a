// ABOUTME: Coach is the RAG service facade: ingest, retrieve, and answer
// ABOUTME: Wires chunker, gateway, index, retriever, assembler, and generator
package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fitstack/fitcoach/internal/config"
	"github.com/fitstack/fitcoach/internal/index"
	"github.com/fitstack/fitcoach/internal/llm"
	"github.com/fitstack/fitcoach/internal/models"
)

// SystemPrompt is the fitness-coach grounding instruction set.
const SystemPrompt = `You are a professional AI fitness coach. You answer questions about
training, nutrition, recovery, and injury prevention.

Rules:
- Ground your answers in the reference material when it is provided.
- When the reference material does not cover the question, say so
  explicitly before giving general advice.
- Be specific and practical: sets, reps, loads, rest, and progressions.
- Recommend consulting a physician for pain, injuries, or medical issues.
- Keep answers concise and structured.`

// Coach runs the full retrieval-and-context pipeline.
type Coach struct {
	cfg       *config.Config
	chunker   *Chunker
	gateway   *Gateway
	index     *index.Index
	retriever *Retriever
	assembler *Assembler
	generator *Generator
}

// NewCoach assembles a Coach from configuration, an LLM client, and a
// vector index.
func NewCoach(cfg *config.Config, client *llm.Client, ix *index.Index) *Coach {
	gateway := NewGateway(client, cfg.EmbedBatchSize)
	return &Coach{
		cfg:       cfg,
		chunker:   NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		gateway:   gateway,
		index:     ix,
		retriever: NewRetriever(gateway, ix),
		assembler: NewAssembler(SystemPrompt, cfg.MaxHistoryTurns),
		generator: NewGenerator(client),
	}
}

// Index exposes the underlying vector index for persistence and stats.
func (c *Coach) Index() *index.Index {
	return c.index
}

// IngestDocument chunks, embeds, and indexes one document, returning the
// number of chunks produced. Re-ingesting a document ID replaces all of
// its previous entries.
func (c *Coach) IngestDocument(ctx context.Context, id, origin, text string) (int, error) {
	doc, err := models.NewDocument(id, origin, text)
	if err != nil {
		return 0, err
	}

	chunks := c.chunker.Chunk(doc.DocumentID, doc.Text)
	if len(chunks) == 0 {
		return 0, nil
	}

	if err := c.gateway.EmbedChunks(ctx, chunks, c.index.Stats().Dimension); err != nil {
		return 0, fmt.Errorf("embedding %s: %w", doc.Origin, err)
	}

	entries := make([]models.IndexEntry, len(chunks))
	for i, ch := range chunks {
		entries[i] = models.EntryFromChunk(ch, doc.Origin)
	}

	// Replace-on-reingest: old entries go before the new batch lands.
	c.index.DeleteByDocument(doc.DocumentID)
	if err := c.index.Upsert(entries); err != nil {
		return 0, fmt.Errorf("indexing %s: %w", doc.Origin, err)
	}

	return len(chunks), nil
}

// DocumentInput is one document handed to bulk ingestion.
type DocumentInput struct {
	ID     string
	Origin string
	Text   string
}

// IngestResult reports one document's outcome from bulk ingestion.
type IngestResult struct {
	Origin string
	Chunks int
	Err    error
}

// IngestAll ingests documents concurrently with a bounded worker pool.
// Chunking and embedding run in parallel across documents; the index
// write path serializes internally. Results keep input order.
func (c *Coach) IngestAll(ctx context.Context, docs []DocumentInput) []IngestResult {
	results := make([]IngestResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.IngestWorkers)

	for i, doc := range docs {
		g.Go(func() error {
			chunks, err := c.IngestDocument(gctx, doc.ID, doc.Origin, doc.Text)
			results[i] = IngestResult{Origin: doc.Origin, Chunks: chunks, Err: err}
			// Individual failures are reported per document, not fatal.
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// Retrieve searches the knowledge base with the configured top-k and
// minimum score.
func (c *Coach) Retrieve(ctx context.Context, query string) ([]models.RetrievedPassage, error) {
	return c.retriever.Retrieve(ctx, query, c.cfg.TopK, c.cfg.MinScore)
}

// Search is Retrieve with an explicit k, for the search CLI and MCP tool.
func (c *Coach) Search(ctx context.Context, query string, k int) ([]models.RetrievedPassage, error) {
	return c.retriever.Retrieve(ctx, query, k, c.cfg.MinScore)
}

// Ask runs the full read path: retrieve, assemble, generate. It returns
// the event stream plus the passages that made it into the prompt (the
// ones that will be cited). An empty passage list means no relevant
// knowledge was found and the answer is unconditioned.
func (c *Coach) Ask(ctx context.Context, view models.ConversationView, query string) (<-chan Event, []models.RetrievedPassage, error) {
	passages, err := c.Retrieve(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return c.askWith(ctx, view, query, passages)
}

// AskDirect bypasses retrieval entirely (the --no-rag path): the model
// answers from the system prompt and history alone.
func (c *Coach) AskDirect(ctx context.Context, view models.ConversationView, query string) (<-chan Event, error) {
	events, _, err := c.askWith(ctx, view, query, nil)
	return events, err
}

func (c *Coach) askWith(ctx context.Context, view models.ConversationView, query string, passages []models.RetrievedPassage) (<-chan Event, []models.RetrievedPassage, error) {
	prompt, err := c.assembler.Assemble(view, passages, query, c.cfg.MaxContextChars)
	if err != nil {
		return nil, nil, err
	}
	return c.generator.Generate(ctx, prompt), prompt.Passages, nil
}

// RemoveDocument deletes every index entry owned by the document and
// reports how many were removed.
func (c *Coach) RemoveDocument(documentID string) int {
	return c.index.DeleteByDocument(documentID)
}

// ClearKnowledge empties the vector index.
func (c *Coach) ClearKnowledge() {
	c.index.Clear()
}

// KnowledgeStats is the read-only statistics boundary.
type KnowledgeStats struct {
	Documents      int    `json:"documents"`
	Chunks         int    `json:"chunks"`
	Dimension      int    `json:"dimension"`
	EmbeddingModel string `json:"embedding_model"`
	ChatModel      string `json:"chat_model"`
}

// Stats reports knowledge base counts for external reporting.
func (c *Coach) Stats() KnowledgeStats {
	s := c.index.Stats()
	return KnowledgeStats{
		Documents:      s.Documents,
		Chunks:         s.Entries,
		Dimension:      s.Dimension,
		EmbeddingModel: c.cfg.EmbeddingModel,
		ChatModel:      c.cfg.ChatModel,
	}
}
