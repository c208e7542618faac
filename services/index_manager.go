package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/internal/vectorstore"
	"rag-chatbot-platform/models"
)

// Embedder turns text into a vector. Satisfied by ai.GeminiClient.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// IndexManager owns the live vector index. Queries read the current
// store under an RWMutex; rebuilds construct a replacement store on the
// side and swap it in atomically, so searches never observe a partial
// index.
type IndexManager struct {
	embedder Embedder
	dir      string
	model    string

	mu    sync.RWMutex
	store *vectorstore.Store

	// buildMu serializes rebuilds without blocking searches.
	buildMu sync.Mutex
}

const indexFileName = "index.bin"

func NewIndexManager(embedder Embedder, dir, model string) *IndexManager {
	return &IndexManager{
		embedder: embedder,
		dir:      dir,
		model:    model,
	}
}

// Build embeds the chunks, swaps the new index in and persists it.
// The previous index keeps serving searches until the swap.
func (im *IndexManager) Build(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to index", ErrIngestion)
	}

	im.buildMu.Lock()
	defer im.buildMu.Unlock()

	start := time.Now()
	logger.Info("Building vector index", "chunks", len(chunks))

	var store *vectorstore.Store
	for i, chunk := range chunks {
		vec, err := im.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("%w: embedding chunk %d of %d: %v", ErrUpstream, i+1, len(chunks), err)
		}

		if store == nil {
			store = vectorstore.New(len(vec))
		}
		if err := store.Add(vec, chunk); err != nil {
			return fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	im.mu.Lock()
	im.store = store
	im.mu.Unlock()

	logger.Info("Vector index built",
		"chunks", store.Len(),
		"dimension", store.Dimension(),
		"duration", time.Since(start).String())

	if err := store.Save(im.indexPath(), im.model); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}

	return nil
}

// Load restores a persisted index at startup. A missing snapshot is
// normal; a corrupt one is logged. Neither is an error, the service just
// starts without an index.
func (im *IndexManager) Load() bool {
	store, info, err := vectorstore.Load(im.indexPath())
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to load vector index", "path", im.indexPath(), "error", err)
		}
		return false
	}

	if info.Model != im.model {
		logger.Warn("Persisted index was built with a different embedding model",
			"index_model", info.Model, "configured_model", im.model)
	}

	im.mu.Lock()
	im.store = store
	im.mu.Unlock()

	logger.Info("Loaded vector index",
		"chunks", store.Len(),
		"dimension", store.Dimension(),
		"created_at", info.CreatedAt.Format(time.RFC3339))
	return true
}

// Search embeds the query and returns the k nearest chunks. Without an
// index it returns no results and no error; callers decide how to
// respond.
func (im *IndexManager) Search(ctx context.Context, query string, k int) ([]models.Chunk, error) {
	im.mu.RLock()
	store := im.store
	im.mu.RUnlock()

	if store == nil {
		return nil, nil
	}

	vec, err := im.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", ErrUpstream, err)
	}

	results, err := store.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	chunks := make([]models.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}
	return chunks, nil
}

// Ready reports whether an index is loaded.
func (im *IndexManager) Ready() bool {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.store != nil
}

func (im *IndexManager) indexPath() string {
	return filepath.Join(im.dir, indexFileName)
}
