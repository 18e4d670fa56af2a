// ABOUTME: Gob snapshot persistence for the vector index
// ABOUTME: Saves and restores entries so restarts do not re-embed the knowledge base
package index

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fitstack/fitcoach/internal/models"
)

// snapshot is the on-disk representation of an index.
type snapshot struct {
	Metric  Metric
	Dim     int
	Entries []models.IndexEntry
}

// Save writes the index contents to path atomically (write then rename).
func (ix *Index) Save(path string) error {
	ix.mu.RLock()
	snap := snapshot{
		Metric:  ix.metric,
		Dim:     ix.dim,
		Entries: append([]models.IndexEntry(nil), ix.entries...),
	}
	ix.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing snapshot file: %w", err)
	}

	return os.Rename(tmp, path)
}

// Load reads an index snapshot from path. A missing file yields an empty
// index with the requested metric, not an error.
func Load(path string, metric Metric) (*Index, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return New(metric), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	ix := New(snap.Metric)
	ix.dim = snap.Dim
	ix.entries = snap.Entries
	for i, e := range snap.Entries {
		ix.pos[e.ChunkID] = i
	}
	return ix, nil
}
