package services

import (
	"context"
	"fmt"
	"time"

	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/internal/telemetry"
	"rag-chatbot-platform/models"

	"github.com/google/uuid"
)

// NoDocumentsMessage is the ingest result when the data directory holds
// no loadable files.
const NoDocumentsMessage = "No documents found in data directory."

// RAGService orchestrates the pipeline: load, chunk, index, retrieve,
// compose, generate and optionally evaluate.
type RAGService struct {
	loader    *DocumentLoader
	index     *IndexManager
	retriever *Retriever
	generator *Generator
	evaluator *Evaluator
	metrics   *telemetry.Metrics
}

func NewRAGService(
	loader *DocumentLoader,
	index *IndexManager,
	retriever *Retriever,
	generator *Generator,
	evaluator *Evaluator,
	metrics *telemetry.Metrics,
) *RAGService {
	return &RAGService{
		loader:    loader,
		index:     index,
		retriever: retriever,
		generator: generator,
		evaluator: evaluator,
		metrics:   metrics,
	}
}

// Ingest loads every document in the data directory, chunks them and
// rebuilds the index. The returned summary is human-readable; an empty
// data directory is a summary, not an error.
func (s *RAGService) Ingest(ctx context.Context, chunkSize, chunkOverlap int) (string, error) {
	ingestID := uuid.NewString()
	start := time.Now()
	logger.Info("Starting ingestion",
		"ingest_id", ingestID,
		"chunk_size", chunkSize,
		"chunk_overlap", chunkOverlap)

	splitter, err := NewSplitter(chunkSize, chunkOverlap)
	if err != nil {
		return "", err
	}

	result, err := s.loader.LoadDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIngestion, err)
	}
	if result.Files == 0 {
		logger.Info("Ingestion found no documents", "ingest_id", ingestID)
		return NoDocumentsMessage, nil
	}

	var chunks []models.Chunk
	for _, unit := range result.Units {
		chunks = append(chunks, splitter.Split(unit.Text, unit.Source, unit.Page)...)
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: no chunks produced from %d documents", ErrIngestion, result.Files)
	}

	if err := s.index.Build(ctx, chunks); err != nil {
		if s.metrics != nil {
			s.metrics.RecordIngest(int64(result.Files), int64(len(chunks)), time.Since(start).Seconds(), "error")
		}
		return "", err
	}

	duration := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordIngest(int64(result.Files), int64(len(chunks)), duration.Seconds(), "success")
	}
	logger.Info("Ingestion completed",
		"ingest_id", ingestID,
		"files", result.Files,
		"chunks", len(chunks),
		"duration", duration.String())

	return fmt.Sprintf("Successfully ingested %d documents (%s) and created %d chunks (Size: %d, Overlap: %d).",
		result.Files, result.Breakdown(), len(chunks), chunkSize, chunkOverlap), nil
}

// Query answers a question against the index. Without an index it
// returns the fixed index-not-found answer and never calls the model.
// Contexts are included in the result only when evaluation is requested.
func (s *RAGService) Query(ctx context.Context, question string, topK int, temperature float64, evaluate bool) (*models.QueryResult, error) {
	if !s.index.Ready() {
		return &models.QueryResult{
			Answer:  IndexNotFoundMessage,
			Sources: []models.SourceCitation{},
		}, nil
	}

	start := time.Now()

	// Over-fetch by roughly 60% so the lexical rerank has candidates
	// to choose from.
	fetchK := topK * 8 / 5
	if fetchK <= topK {
		fetchK = topK + 1
	}

	chunks, err := s.retriever.Retrieve(ctx, question, fetchK, topK)
	if err != nil {
		s.recordQuery(start, evaluate, "error")
		return nil, err
	}

	contextText, citations := ComposeContext(chunks)

	answer, err := s.generator.Generate(ctx, question, contextText, temperature)
	if err != nil {
		s.recordQuery(start, evaluate, "error")
		return nil, err
	}

	result := &models.QueryResult{
		Answer:  answer,
		Sources: citations,
	}

	if evaluate {
		contexts := make([]string, len(chunks))
		for i, chunk := range chunks {
			contexts[i] = chunk.Content
		}
		result.Contexts = contexts
		result.Evaluation = s.evaluator.Evaluate(ctx, question, answer, contexts, citations)
	}

	s.recordQuery(start, evaluate, "success")
	return result, nil
}

func (s *RAGService) recordQuery(start time.Time, evaluated bool, status string) {
	if s.metrics != nil {
		s.metrics.RecordQuery(time.Since(start).Seconds(), evaluated, status)
	}
}
