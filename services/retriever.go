package services

import (
	"context"
	"sort"
	"strings"

	"rag-chatbot-platform/models"
)

// searcher is the slice of IndexManager the retriever depends on.
type searcher interface {
	Search(ctx context.Context, query string, k int) ([]models.Chunk, error)
}

// Retriever over-fetches candidates by vector similarity and reranks
// them by lexical overlap with the query, which favors chunks that use
// the question's own vocabulary.
type Retriever struct {
	index searcher
}

func NewRetriever(index searcher) *Retriever {
	return &Retriever{index: index}
}

// Retrieve fetches fetchK candidates and returns the top returnN after
// reranking. Fewer candidates than returnN pass through unchanged.
func (r *Retriever) Retrieve(ctx context.Context, query string, fetchK, returnN int) ([]models.Chunk, error) {
	candidates, err := r.index.Search(ctx, query, fetchK)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	queryTerms := termSet(query)
	scores := make([]float64, len(candidates))
	for i, chunk := range candidates {
		scores[i] = lexicalOverlap(queryTerms, chunk.Content)
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	// Stable sort keeps vector-similarity order among equal scores
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if returnN > len(order) {
		returnN = len(order)
	}
	reranked := make([]models.Chunk, returnN)
	for i := 0; i < returnN; i++ {
		reranked[i] = candidates[order[i]]
	}
	return reranked, nil
}

// lexicalOverlap scores how many distinct query terms appear in the
// content, as a fraction of the query's distinct terms.
func lexicalOverlap(queryTerms map[string]struct{}, content string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}

	contentTerms := termSet(content)
	matched := 0
	for term := range queryTerms {
		if _, ok := contentTerms[term]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTerms))
}

func termSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, term := range strings.Fields(strings.ToLower(text)) {
		set[term] = struct{}{}
	}
	return set
}
