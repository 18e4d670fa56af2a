// ABOUTME: Tests for IndexEntry conversion and passage source refs
// ABOUTME: Verifies chunk denormalization and SourceRef projection
package models

import (
	"testing"
)

func TestEntryFromChunk(t *testing.T) {
	chunk := Chunk{
		ChunkID:    "chunk_1",
		DocumentID: "doc_1",
		Seq:        2,
		Text:       "Warm up before lifting.",
		Start:      40,
		End:        63,
		Vector:     []float64{0.1, 0.2},
	}

	entry := EntryFromChunk(chunk, "warmup.md")

	if entry.ChunkID != chunk.ChunkID || entry.DocumentID != chunk.DocumentID {
		t.Errorf("entry identity = %q/%q", entry.ChunkID, entry.DocumentID)
	}
	if entry.Origin != "warmup.md" {
		t.Errorf("Origin = %q", entry.Origin)
	}
	if entry.Seq != 2 || entry.Start != 40 || entry.End != 63 {
		t.Errorf("offsets = seq %d [%d,%d)", entry.Seq, entry.Start, entry.End)
	}
	if len(entry.Vector) != 2 {
		t.Errorf("Vector = %v", entry.Vector)
	}
}

func TestRetrievedPassage_Source(t *testing.T) {
	p := RetrievedPassage{
		Entry: IndexEntry{ChunkID: "c", DocumentID: "d", Origin: "d.md"},
		Score: 0.73,
		Rank:  1,
	}

	ref := p.Source()
	if ref.ChunkID != "c" || ref.DocumentID != "d" || ref.Origin != "d.md" {
		t.Errorf("SourceRef = %+v", ref)
	}
	if ref.Score != 0.73 {
		t.Errorf("Score = %v", ref.Score)
	}
}
