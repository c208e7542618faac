package vectorstore

import (
	"bytes"
	"encoding/gob"
	"math"
	"os"
	"path/filepath"
	"testing"

	"rag-chatbot-platform/models"
	"rag-chatbot-platform/utils"
)

func TestStoreSearchOrdersByCosine(t *testing.T) {
	store := New(2)

	vectors := map[string][]float32{
		"east":  {1, 0},
		"north": {0, 1},
		"both":  {1, 1},
	}
	for name, vec := range vectors {
		if err := store.Add(vec, models.Chunk{Content: name}); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	results, err := store.Search([]float32{1, 0.2}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Chunk.Content != "east" {
		t.Errorf("expected east first, got %s", results[0].Chunk.Content)
	}
	if results[2].Chunk.Content != "north" {
		t.Errorf("expected north last, got %s", results[2].Chunk.Content)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not descending at %d: %f > %f", i, results[i].Score, results[i-1].Score)
		}
	}
}

func TestStoreSearchClampsK(t *testing.T) {
	store := New(2)
	if err := store.Add([]float32{1, 0}, models.Chunk{Content: "only"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	results, err := store.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	results, err = store.Search([]float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("search k=0: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results for k=0, got %d", len(results))
	}
}

func TestStoreDimensionMismatch(t *testing.T) {
	store := New(3)

	if err := store.Add([]float32{1, 0}, models.Chunk{}); err == nil {
		t.Error("expected error adding 2d vector to 3d store")
	}
	if _, err := store.Search([]float32{1, 0}, 1); err == nil {
		t.Error("expected error searching 3d store with 2d query")
	}
}

func TestStoreZeroVector(t *testing.T) {
	store := New(2)
	if err := store.Add([]float32{0, 0}, models.Chunk{Content: "zero"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	results, err := store.Search([]float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results[0].Score != 0 {
		t.Errorf("expected zero similarity against zero vector, got %f", results[0].Score)
	}
}

func TestSnapshotRoundtrip(t *testing.T) {
	store := New(2)
	chunks := []models.Chunk{
		{Content: "first chunk", Source: "doc.pdf", Page: "1", ChunkOrdinal: 0, ChunkCount: 2},
		{Content: "second chunk", Source: "doc.pdf", Page: "2", ChunkOrdinal: 1, ChunkCount: 2, RelativePosition: 0.5},
	}
	if err := store.Add([]float32{0.5, 0.25}, chunks[0]); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add([]float32{0.1, 0.9}, chunks[1]); err != nil {
		t.Fatalf("add: %v", err)
	}

	path := filepath.Join(t.TempDir(), "index.bin")
	if err := store.Save(path, "text-embedding-004"); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, info, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.Model != "text-embedding-004" {
		t.Errorf("model = %q", info.Model)
	}
	if info.ID == "" {
		t.Error("snapshot ID missing")
	}
	if info.CreatedAt.IsZero() {
		t.Error("snapshot timestamp missing")
	}
	if loaded.Len() != 2 || loaded.Dimension() != 2 {
		t.Fatalf("loaded %d chunks at dimension %d", loaded.Len(), loaded.Dimension())
	}

	results, err := loaded.Search([]float32{0.1, 0.9}, 1)
	if err != nil {
		t.Fatalf("search after load: %v", err)
	}
	if results[0].Chunk.Content != "second chunk" {
		t.Errorf("nearest after load = %q", results[0].Chunk.Content)
	}
	if results[0].Chunk.Page != "2" {
		t.Errorf("chunk metadata lost: page = %q", results[0].Chunk.Page)
	}
	if math.Abs(results[0].Score-1.0) > 1e-6 {
		t.Errorf("self-similarity = %f", results[0].Score)
	}
}

func TestSnapshotLoadMissing(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.bin"))
	if err == nil {
		t.Fatal("expected error for missing snapshot")
	}
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestSnapshotLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	if err := os.WriteFile(path, []byte("not a snapshot"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, _, err := Load(path)
	if err == nil {
		t.Fatal("expected error for corrupt snapshot")
	}
	if os.IsNotExist(err) {
		t.Error("corrupt file must not report as missing")
	}
}

func TestSnapshotLoadRejectsMismatchedPayload(t *testing.T) {
	snap := snapshot{
		ID:        "test",
		Dimension: 2,
		Vectors:   [][]float32{{1, 0}, {0, 1}},
		Chunks:    []models.Chunk{{Content: "lonely"}},
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		t.Fatalf("encode: %v", err)
	}
	compressed, err := utils.CompressData(buf.Bytes(), utils.CompressionBrotli)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	path := filepath.Join(t.TempDir(), "index.bin")
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, _, err := Load(path); err == nil {
		t.Fatal("expected error for mismatched vectors and chunks")
	}
}

func TestSnapshotReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")

	first := New(2)
	if err := first.Add([]float32{1, 0}, models.Chunk{Content: "old"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := first.Save(path, "m"); err != nil {
		t.Fatalf("save first: %v", err)
	}

	second := New(2)
	for _, c := range []string{"new-a", "new-b"} {
		if err := second.Add([]float32{0, 1}, models.Chunk{Content: c}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := second.Save(path, "m"); err != nil {
		t.Fatalf("save second: %v", err)
	}

	loaded, _, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("expected replacement snapshot with 2 chunks, got %d", loaded.Len())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}
