// ABOUTME: IndexEntry and RetrievedPassage, the vector index and retrieval result types
// ABOUTME: IndexEntry denormalizes document metadata so retrieval needs no join
package models

// IndexEntry is the persisted unit inside the vector index: a chunk's
// vector plus enough denormalized metadata to display a hit directly.
// Entries are never mutated after insertion, only replaced.
type IndexEntry struct {
	ChunkID    string    `json:"chunk_id"`
	DocumentID string    `json:"document_id"`
	Origin     string    `json:"origin"`
	Seq        int       `json:"seq"`
	Text       string    `json:"text"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Vector     []float64 `json:"vector"`
}

// EntryFromChunk builds an IndexEntry from an embedded chunk and its origin.
func EntryFromChunk(c Chunk, origin string) IndexEntry {
	return IndexEntry{
		ChunkID:    c.ChunkID,
		DocumentID: c.DocumentID,
		Origin:     origin,
		Seq:        c.Seq,
		Text:       c.Text,
		Start:      c.Start,
		End:        c.End,
		Vector:     c.Vector,
	}
}

// RetrievedPassage is the ephemeral result of one retrieval call.
type RetrievedPassage struct {
	Entry IndexEntry `json:"entry"`
	Score float64    `json:"score"`
	Rank  int        `json:"rank"`
}

// Source converts a passage into the SourceRef recorded on answer turns.
func (p RetrievedPassage) Source() SourceRef {
	return SourceRef{
		ChunkID:    p.Entry.ChunkID,
		DocumentID: p.Entry.DocumentID,
		Origin:     p.Entry.Origin,
		Score:      p.Score,
	}
}
