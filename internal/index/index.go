// ABOUTME: In-memory vector index with cosine or inner-product similarity search
// ABOUTME: Writes are serialized, searches run concurrently against a consistent snapshot
package index

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/fitstack/fitcoach/internal/models"
)

// ErrDimensionMismatch marks a vector whose dimension disagrees with the
// index's established dimension. The index never truncates or pads.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Metric selects the similarity function, fixed at index creation.
type Metric int

const (
	MetricCosine Metric = iota
	MetricInnerProduct
)

// Result is one search hit: a stored entry plus its similarity score.
type Result struct {
	Entry models.IndexEntry
	Score float64
}

// Index stores chunk vectors with denormalized metadata. The dimension is
// fixed by the first inserted entry; later mismatches are rejected.
type Index struct {
	mu      sync.RWMutex
	metric  Metric
	dim     int
	entries []models.IndexEntry // insertion order; replaced entries keep their slot
	pos     map[string]int      // chunk ID -> slot in entries
}

// New creates an empty index with the given similarity metric.
func New(metric Metric) *Index {
	return &Index{
		metric: metric,
		pos:    make(map[string]int),
	}
}

// Upsert inserts or replaces entries by chunk ID. The batch is validated
// before any mutation, so a dimension mismatch leaves the index untouched.
func (ix *Index) Upsert(entries []models.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	dim := ix.dim
	for _, e := range entries {
		if len(e.Vector) == 0 {
			return fmt.Errorf("%w: entry %s has no vector", ErrDimensionMismatch, e.ChunkID)
		}
		if dim == 0 {
			dim = len(e.Vector)
		} else if len(e.Vector) != dim {
			return fmt.Errorf("%w: entry %s has dimension %d, index has %d",
				ErrDimensionMismatch, e.ChunkID, len(e.Vector), dim)
		}
	}

	ix.dim = dim
	for _, e := range entries {
		if slot, ok := ix.pos[e.ChunkID]; ok {
			ix.entries[slot] = e
			continue
		}
		ix.pos[e.ChunkID] = len(ix.entries)
		ix.entries = append(ix.entries, e)
	}
	return nil
}

// DeleteByDocument removes every entry owned by the document and reports
// how many were removed. Removing nothing is not an error.
func (ix *Index) DeleteByDocument(documentID string) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	kept := ix.entries[:0]
	removed := 0
	for _, e := range ix.entries {
		if e.DocumentID == documentID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0
	}

	ix.entries = kept
	ix.pos = make(map[string]int, len(kept))
	for i, e := range kept {
		ix.pos[e.ChunkID] = i
	}
	return removed
}

// Search returns the k most similar entries, highest score first. Equal
// scores keep insertion order (earlier entry wins). An empty index yields
// an empty result, never an error.
func (ix *Index) Search(query []float64, k int) ([]Result, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.entries) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			ErrDimensionMismatch, len(query), ix.dim)
	}

	results := make([]Result, 0, len(ix.entries))
	for _, e := range ix.entries {
		results = append(results, Result{Entry: e, Score: ix.similarity(query, e.Vector)})
	}

	// Stable sort over insertion order breaks score ties toward the
	// earlier-inserted entry.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func (ix *Index) similarity(a, b []float64) float64 {
	switch ix.metric {
	case MetricInnerProduct:
		var dot float64
		for i := range a {
			dot += a[i] * b[i]
		}
		return dot
	default:
		return cosineSimilarity(a, b)
	}
}

// cosineSimilarity calculates cosine similarity between two equal-length vectors.
func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Stats describes index contents for external reporting.
type Stats struct {
	Entries   int `json:"entries"`
	Documents int `json:"documents"`
	Dimension int `json:"dimension"`
}

// Stats returns entry count, distinct document count, and dimension.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	docs := make(map[string]struct{})
	for _, e := range ix.entries {
		docs[e.DocumentID] = struct{}{}
	}
	return Stats{
		Entries:   len(ix.entries),
		Documents: len(docs),
		Dimension: ix.dim,
	}
}

// Clear removes every entry and resets the dimension.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = nil
	ix.pos = make(map[string]int)
	ix.dim = 0
}
