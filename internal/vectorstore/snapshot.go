package vectorstore

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rag-chatbot-platform/models"
	"rag-chatbot-platform/utils"

	"github.com/google/uuid"
)

// snapshot is the on-disk form of a Store: gob-encoded, then brotli
// compressed.
type snapshot struct {
	ID        string
	Dimension int
	Model     string
	CreatedAt time.Time
	Vectors   [][]float32
	Chunks    []models.Chunk
}

// SnapshotInfo describes a persisted index without its payload.
type SnapshotInfo struct {
	ID        string
	Model     string
	CreatedAt time.Time
}

// Save persists the store to path. The file is written to a temporary
// sibling first and renamed into place so readers never observe a partial
// snapshot.
func (s *Store) Save(path, model string) error {
	snap := snapshot{
		ID:        uuid.NewString(),
		Dimension: s.dimension,
		Model:     model,
		CreatedAt: time.Now().UTC(),
		Vectors:   s.vectors,
		Chunks:    s.chunks,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("encoding index snapshot: %w", err)
	}

	compressed, err := utils.CompressData(buf.Bytes(), utils.CompressionBrotli)
	if err != nil {
		return fmt.Errorf("compressing index snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, compressed, 0o644); err != nil {
		return fmt.Errorf("writing index snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing index snapshot: %w", err)
	}

	return nil
}

// Load reads a snapshot from path and reconstructs the store. A missing
// file is reported via os.IsNotExist on the returned error.
func Load(path string) (*Store, SnapshotInfo, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, SnapshotInfo{}, err
	}

	data, err := utils.DecompressData(compressed, utils.CompressionBrotli)
	if err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("decompressing index snapshot: %w", err)
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("decoding index snapshot: %w", err)
	}

	if len(snap.Vectors) != len(snap.Chunks) {
		return nil, SnapshotInfo{}, fmt.Errorf("corrupt index snapshot: %d vectors for %d chunks", len(snap.Vectors), len(snap.Chunks))
	}

	store := New(snap.Dimension)
	for i, vec := range snap.Vectors {
		if err := store.Add(vec, snap.Chunks[i]); err != nil {
			return nil, SnapshotInfo{}, fmt.Errorf("corrupt index snapshot: %w", err)
		}
	}

	info := SnapshotInfo{ID: snap.ID, Model: snap.Model, CreatedAt: snap.CreatedAt}
	return store, info, nil
}
