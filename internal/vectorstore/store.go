package vectorstore

import (
	"fmt"
	"math"
	"sort"

	"rag-chatbot-platform/models"
)

// Store is an in-memory vector index over document chunks. Vectors are
// compared by cosine similarity with norms precomputed at insert time.
// The store itself is not synchronized; the index manager guards it.
type Store struct {
	dimension int
	vectors   [][]float32
	norms     []float64
	chunks    []models.Chunk
}

// SearchResult pairs a chunk with its similarity to the query vector.
type SearchResult struct {
	Chunk models.Chunk
	Score float64
}

func New(dimension int) *Store {
	return &Store{dimension: dimension}
}

// Add appends a vector and its chunk. The vector must match the store
// dimension.
func (s *Store) Add(vector []float32, chunk models.Chunk) error {
	if len(vector) != s.dimension {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vector), s.dimension)
	}

	s.vectors = append(s.vectors, vector)
	s.norms = append(s.norms, norm(vector))
	s.chunks = append(s.chunks, chunk)
	return nil
}

// Search returns the k most similar chunks ordered by descending cosine
// similarity. Fewer than k results are returned when the store is smaller.
func (s *Store) Search(query []float32, k int) ([]SearchResult, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), s.dimension)
	}
	if k <= 0 || len(s.vectors) == 0 {
		return nil, nil
	}

	queryNorm := norm(query)

	results := make([]SearchResult, len(s.vectors))
	for i, vec := range s.vectors {
		results[i] = SearchResult{
			Chunk: s.chunks[i],
			Score: cosine(query, queryNorm, vec, s.norms[i]),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func (s *Store) Len() int {
	return len(s.vectors)
}

func (s *Store) Dimension() int {
	return s.dimension
}

func norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, normA float64, b []float32, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}
