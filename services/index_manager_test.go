package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rag-chatbot-platform/models"
)

// stubEmbedder maps known texts to fixed vectors and falls back to a
// constant for anything else.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 1}, nil
}

type countingEmbedder struct {
	failAfter int
	calls     int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	if c.calls > c.failAfter {
		return nil, errors.New("embedding quota exhausted")
	}
	return []float32{1, 0}, nil
}

func TestBuildRejectsEmptyChunks(t *testing.T) {
	manager := NewIndexManager(&stubEmbedder{}, t.TempDir(), "embed-model")

	err := manager.Build(context.Background(), nil)
	if !errors.Is(err, ErrIngestion) {
		t.Errorf("expected ingestion error, got %v", err)
	}
}

func TestSearchWithoutIndex(t *testing.T) {
	manager := NewIndexManager(&stubEmbedder{}, t.TempDir(), "embed-model")

	if manager.Ready() {
		t.Error("manager ready before any build")
	}
	chunks, err := manager.Search(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if chunks != nil {
		t.Errorf("expected no results without an index, got %d", len(chunks))
	}
}

func TestBuildThenSearch(t *testing.T) {
	dir := t.TempDir()
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"alpha facts":      {1, 0},
		"beta facts":       {0, 1},
		"tell me of alpha": {1, 0.1},
	}}
	manager := NewIndexManager(embedder, dir, "embed-model")

	chunks := []models.Chunk{
		{Content: "alpha facts", Source: "a.txt", Page: "Para-1"},
		{Content: "beta facts", Source: "b.txt", Page: "Para-1"},
	}
	if err := manager.Build(context.Background(), chunks); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !manager.Ready() {
		t.Error("manager not ready after build")
	}

	got, err := manager.Search(context.Background(), "tell me of alpha", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Content != "alpha facts" {
		t.Errorf("nearest = %q", got[0].Content)
	}
	if got[0].Source != "a.txt" || got[0].Page != "Para-1" {
		t.Errorf("chunk metadata lost: %+v", got[0])
	}

	if _, err := os.Stat(filepath.Join(dir, "index.bin")); err != nil {
		t.Errorf("index not persisted: %v", err)
	}
}

func TestLoadRestoresPersistedIndex(t *testing.T) {
	dir := t.TempDir()
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"alpha facts": {1, 0},
		"find alpha":  {1, 0},
	}}

	first := NewIndexManager(embedder, dir, "embed-model")
	err := first.Build(context.Background(), []models.Chunk{
		{Content: "alpha facts", Source: "a.txt", Page: "Para-1"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	second := NewIndexManager(embedder, dir, "embed-model")
	if !second.Load() {
		t.Fatal("load failed for persisted index")
	}
	if !second.Ready() {
		t.Error("manager not ready after load")
	}

	got, err := second.Search(context.Background(), "find alpha", 1)
	if err != nil {
		t.Fatalf("search after load: %v", err)
	}
	if len(got) != 1 || got[0].Content != "alpha facts" {
		t.Errorf("search after load = %+v", got)
	}
}

func TestLoadMissingIndex(t *testing.T) {
	manager := NewIndexManager(&stubEmbedder{}, t.TempDir(), "embed-model")

	if manager.Load() {
		t.Error("load reported success with no snapshot on disk")
	}
	if manager.Ready() {
		t.Error("manager ready after failed load")
	}
}

func TestLoadCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.bin"), []byte("junk"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	manager := NewIndexManager(&stubEmbedder{}, dir, "embed-model")
	if manager.Load() {
		t.Error("load reported success for corrupt snapshot")
	}
}

func TestLoadToleratesModelMismatch(t *testing.T) {
	dir := t.TempDir()
	embedder := &stubEmbedder{}

	first := NewIndexManager(embedder, dir, "old-model")
	err := first.Build(context.Background(), []models.Chunk{{Content: "some text"}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// A mismatched embedding model is logged, not rejected.
	second := NewIndexManager(embedder, dir, "new-model")
	if !second.Load() {
		t.Error("load rejected snapshot from a different model")
	}
}

func TestBuildEmbedFailureLeavesIndexUntouched(t *testing.T) {
	embedder := &countingEmbedder{failAfter: 1}
	manager := NewIndexManager(embedder, t.TempDir(), "embed-model")

	err := manager.Build(context.Background(), []models.Chunk{
		{Content: "first"},
		{Content: "second"},
	})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if manager.Ready() {
		t.Error("partial build must not become the live index")
	}
}

func TestRebuildReplacesIndex(t *testing.T) {
	dir := t.TempDir()
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"old content": {1, 0},
		"new content": {0, 1},
		"query":       {0, 1},
	}}
	manager := NewIndexManager(embedder, dir, "embed-model")

	if err := manager.Build(context.Background(), []models.Chunk{{Content: "old content"}}); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if err := manager.Build(context.Background(), []models.Chunk{{Content: "new content"}}); err != nil {
		t.Fatalf("second build: %v", err)
	}

	got, err := manager.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Content != "new content" {
		t.Errorf("rebuild did not replace the index: %+v", got)
	}
}

func TestSearchEmbedFailure(t *testing.T) {
	dir := t.TempDir()
	embedder := &stubEmbedder{}
	manager := NewIndexManager(embedder, dir, "embed-model")

	if err := manager.Build(context.Background(), []models.Chunk{{Content: "text"}}); err != nil {
		t.Fatalf("build: %v", err)
	}

	embedder.err = errors.New("embedding down")
	_, err := manager.Search(context.Background(), "query", 1)
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}
}
