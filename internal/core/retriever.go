// ABOUTME: Retriever orchestrates query embedding, index search, and score filtering
// ABOUTME: Deduplicates overlapping chunks so one passage represents each overlap group
package core

import (
	"context"
	"fmt"

	"github.com/fitstack/fitcoach/internal/index"
	"github.com/fitstack/fitcoach/internal/models"
)

// Retriever produces ranked supporting passages for a query.
type Retriever struct {
	gateway *Gateway
	index   *index.Index
}

// NewRetriever creates a Retriever over the given gateway and index.
func NewRetriever(gateway *Gateway, ix *index.Index) *Retriever {
	return &Retriever{gateway: gateway, index: ix}
}

// Retrieve embeds the query, searches for k candidates, filters out scores
// below minScore, and collapses overlapping chunks of the same document to
// the highest-scoring one. An empty result is a valid outcome meaning "no
// relevant knowledge found", never an error; ErrRetrievalUnavailable is
// returned only when the embedding or index call itself fails.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, minScore float64) ([]models.RetrievedPassage, error) {
	stats := r.index.Stats()
	if stats.Entries == 0 {
		return nil, nil
	}

	vector, err := r.gateway.EmbedQuery(ctx, query, stats.Dimension)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", ErrRetrievalUnavailable, err)
	}

	results, err := r.index.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: searching index: %v", ErrRetrievalUnavailable, err)
	}

	var passages []models.RetrievedPassage
	for _, res := range results {
		if res.Score < minScore {
			continue
		}
		if overlapsKept(passages, res.Entry) {
			continue
		}
		passages = append(passages, models.RetrievedPassage{
			Entry: res.Entry,
			Score: res.Score,
			Rank:  len(passages) + 1,
		})
	}

	return passages, nil
}

// overlapsKept reports whether the candidate's character range intersects
// an already-kept passage from the same document. Results arrive in score
// order, so the kept passage is always the higher-scoring one.
func overlapsKept(kept []models.RetrievedPassage, e models.IndexEntry) bool {
	for _, p := range kept {
		if p.Entry.DocumentID != e.DocumentID {
			continue
		}
		if e.Start < p.Entry.End && p.Entry.Start < e.End {
			return true
		}
	}
	return false
}
