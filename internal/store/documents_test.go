// ABOUTME: Tests for the document registry
// ABOUTME: Verifies upsert, listing, and removal of ingestion records
package store

import (
	"testing"
)

func TestDocumentStore_RecordAndGet(t *testing.T) {
	db := testDB(t)
	store := NewDocumentStore(db)

	rec := &DocumentRecord{
		DocumentID: "squat-guide",
		Origin:     "squat-guide.md",
		ChunkCount: 12,
		CharCount:  5400,
	}
	if err := store.Record(rec); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if rec.IngestedAt.IsZero() {
		t.Error("Record() did not stamp IngestedAt")
	}

	got, err := store.Get("squat-guide")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil for recorded document")
	}
	if got.Origin != "squat-guide.md" || got.ChunkCount != 12 {
		t.Errorf("Get() = %+v", got)
	}
}

func TestDocumentStore_RecordUpsert(t *testing.T) {
	db := testDB(t)
	store := NewDocumentStore(db)

	if err := store.Record(&DocumentRecord{DocumentID: "d", Origin: "d.md", ChunkCount: 3}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := store.Record(&DocumentRecord{DocumentID: "d", Origin: "d.md", ChunkCount: 7}); err != nil {
		t.Fatalf("re-Record() error = %v", err)
	}

	recs, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("ListAll() = %d records after upsert, want 1", len(recs))
	}
	if recs[0].ChunkCount != 7 {
		t.Errorf("chunk_count = %d, want 7", recs[0].ChunkCount)
	}
}

func TestDocumentStore_GetMissing(t *testing.T) {
	db := testDB(t)
	store := NewDocumentStore(db)

	got, err := store.Get("nope")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil", got)
	}
}

func TestDocumentStore_DeleteAndClear(t *testing.T) {
	db := testDB(t)
	store := NewDocumentStore(db)

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Record(&DocumentRecord{DocumentID: id, Origin: id + ".md"}); err != nil {
			t.Fatalf("Record(%q) error = %v", id, err)
		}
	}

	if err := store.Delete("b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	recs, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("ListAll() = %d after delete, want 2", len(recs))
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	recs, err = store.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("ListAll() = %d after clear, want 0", len(recs))
	}
}
