// ABOUTME: Embedding gateway converting chunks and queries into vectors
// ABOUTME: Batches remote calls and enforces the index's established dimension
package core

import (
	"context"
	"fmt"

	"github.com/fitstack/fitcoach/internal/models"
)

// EmbeddingClient is the remote embedding boundary. One call embeds a
// batch of texts and returns one vector per input, in input order.
type EmbeddingClient interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Gateway wraps the embedding client with batching and dimension checks.
// It holds no state of its own.
type Gateway struct {
	client    EmbeddingClient
	batchSize int
}

// NewGateway creates a Gateway that embeds at most batchSize texts per
// remote call.
func NewGateway(client EmbeddingClient, batchSize int) *Gateway {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Gateway{client: client, batchSize: batchSize}
}

// EmbedChunks attaches a vector to every chunk. expectDim is the index's
// established dimension, or 0 when the index is still empty. The call is
// atomic: on any failure no chunk is modified.
func (g *Gateway) EmbedChunks(ctx context.Context, chunks []models.Chunk, expectDim int) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors := make([][]float64, 0, len(chunks))
	for begin := 0; begin < len(texts); begin += g.batchSize {
		end := begin + g.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := g.client.Embed(ctx, texts[begin:end])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
		}
		if len(batch) != end-begin {
			return fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingUnavailable, len(batch), end-begin)
		}
		vectors = append(vectors, batch...)
	}

	if err := checkDimensions(vectors, expectDim); err != nil {
		return err
	}

	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}
	return nil
}

// EmbedQuery embeds a single query text.
func (g *Gateway) EmbedQuery(ctx context.Context, text string, expectDim int) ([]float64, error) {
	vectors, err := g.client.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one query", ErrEmbeddingUnavailable, len(vectors))
	}
	if err := checkDimensions(vectors, expectDim); err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// checkDimensions verifies every vector shares one dimension, and that it
// matches expectDim when the index has one established.
func checkDimensions(vectors [][]float64, expectDim int) error {
	dim := expectDim
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: empty vector at position %d", ErrEmbeddingDimensionMismatch, i)
		}
		if dim == 0 {
			dim = len(v)
		} else if len(v) != dim {
			return fmt.Errorf("%w: got dimension %d, want %d", ErrEmbeddingDimensionMismatch, len(v), dim)
		}
	}
	return nil
}
