// ABOUTME: Chunker splits raw documents into overlapping segments for embedding
// ABOUTME: Prefers paragraph and sentence boundaries, falling back to hard cuts
package core

import (
	"strings"

	"github.com/fitstack/fitcoach/internal/models"
)

// Chunker produces deterministic, overlapping chunks. Identical input and
// parameters always yield identical boundaries, which re-indexing relies on.
type Chunker struct {
	maxSize int
	overlap int
}

// NewChunker creates a Chunker. maxSize is the maximum chunk length in
// runes; overlap is clamped to [0, maxSize-1].
func NewChunker(maxSize, overlap int) *Chunker {
	if maxSize < 1 {
		maxSize = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize - 1
	}
	return &Chunker{maxSize: maxSize, overlap: overlap}
}

// Chunk splits text into ordered chunks owned by documentID. Consecutive
// chunks share the last min(overlap, previousLength-1) runes of the
// preceding chunk. Empty or whitespace-only input yields zero chunks.
func (c *Chunker) Chunk(documentID, text string) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []models.Chunk

	start := 0
	for start < len(runes) {
		end := len(runes)
		if start+c.maxSize < len(runes) {
			end = boundary(runes, start, start+c.maxSize)
		}

		chunks = append(chunks, models.Chunk{
			ChunkID:    models.GenerateChunkID(),
			DocumentID: documentID,
			Seq:        len(chunks),
			Text:       string(runes[start:end]),
			Start:      start,
			End:        end,
		})

		if end >= len(runes) {
			break
		}

		ov := c.overlap
		if max := end - start - 1; ov > max {
			ov = max
		}
		start = end - ov
	}

	return chunks
}

// boundary picks the best cut point in (start, limit]: the last paragraph
// break, else the last sentence end, else a hard cut at limit.
func boundary(runes []rune, start, limit int) int {
	// Paragraph break: cut after the blank line.
	for i := limit; i > start+1; i-- {
		if runes[i-1] == '\n' && runes[i-2] == '\n' {
			return i
		}
	}

	// Sentence end: punctuation followed by whitespace (or at the limit).
	for i := limit; i > start+1; i-- {
		if !isSentenceEnd(runes[i-1]) {
			continue
		}
		if i == limit || isSpace(runes[i]) {
			return i
		}
	}

	// Hard cut. A single oversized unit gets split mid-word.
	return limit
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '\n':
		return true
	}
	return false
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
