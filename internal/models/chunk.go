// ABOUTME: Chunk is a contiguous text span of a Document, the unit of embedding
// ABOUTME: Carries character offsets; the vector stays nil until embedding completes
package models

import "github.com/google/uuid"

// Chunk represents one bounded segment of a document.
// Start and End are rune offsets into the owning document's text,
// so End-Start always equals the rune length of Text. Consecutive
// chunks of the same document overlap by the configured overlap.
type Chunk struct {
	ChunkID    string    `json:"chunk_id"`
	DocumentID string    `json:"document_id"`
	Seq        int       `json:"seq"`
	Text       string    `json:"text"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Vector     []float64 `json:"vector,omitempty"`
}

// GenerateChunkID generates a unique chunk identifier.
func GenerateChunkID() string {
	return "chunk_" + uuid.New().String()
}
