package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics bundles the instruments recorded across the pipeline.
type Metrics struct {
	RequestCounter      metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	DocumentsIngested   metric.Int64Counter
	ChunksIndexed       metric.Int64Counter
	IngestDuration      metric.Float64Histogram
	QueryDuration       metric.Float64Histogram
	TokensUsed          metric.Int64Counter
	EvaluationScore     metric.Float64Histogram
	CircuitBreakerState metric.Int64Counter
}

// InitMetrics registers every instrument on the global meter. The first
// registration error aborts the whole batch.
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("rag-chatbot-platform")

	var err error
	counter := func(name, desc string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var c metric.Int64Counter
		c, err = meter.Int64Counter(name, metric.WithDescription(desc))
		return c
	}
	histogram := func(name, desc, unit string) metric.Float64Histogram {
		if err != nil {
			return nil
		}
		opts := []metric.Float64HistogramOption{metric.WithDescription(desc)}
		if unit != "" {
			opts = append(opts, metric.WithUnit(unit))
		}
		var h metric.Float64Histogram
		h, err = meter.Float64Histogram(name, opts...)
		return h
	}

	m := &Metrics{
		RequestCounter:      counter("http.requests.total", "Total HTTP requests"),
		RequestDuration:     histogram("http.request.duration", "HTTP request duration in seconds", "s"),
		DocumentsIngested:   counter("rag.documents.ingested", "Total documents ingested"),
		ChunksIndexed:       counter("rag.chunks.indexed", "Total chunks embedded and indexed"),
		IngestDuration:      histogram("rag.ingest.duration", "Ingestion run duration in seconds", "s"),
		QueryDuration:       histogram("rag.query.duration", "Query pipeline duration in seconds", "s"),
		TokensUsed:          counter("gemini.tokens.used", "Total Gemini tokens used"),
		EvaluationScore:     histogram("rag.evaluation.overall_score", "Overall evaluation score per evaluated answer", ""),
		CircuitBreakerState: counter("circuit_breaker.state_changes", "Circuit breaker state changes"),
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRequest records one HTTP request with its latency.
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	)

	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, duration, attrs)
}

// RecordIngest records the outcome of one ingestion run.
func (m *Metrics) RecordIngest(documents, chunks int64, duration float64, status string) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("rag.status", status))

	m.DocumentsIngested.Add(ctx, documents, attrs)
	m.ChunksIndexed.Add(ctx, chunks, attrs)
	m.IngestDuration.Record(ctx, duration, attrs)
}

// RecordQuery records one query pipeline execution.
func (m *Metrics) RecordQuery(duration float64, evaluated bool, status string) {
	m.QueryDuration.Record(context.Background(), duration, metric.WithAttributes(
		attribute.Bool("rag.evaluated", evaluated),
		attribute.String("rag.status", status),
	))
}

// RecordTokensUsed records Gemini token consumption per model.
func (m *Metrics) RecordTokensUsed(tokens int64, model string) {
	m.TokensUsed.Add(context.Background(), tokens, metric.WithAttributes(
		attribute.String("gemini.model", model),
		attribute.String("service", "gemini"),
	))
}

// RecordEvaluation records the overall score of one evaluation report.
func (m *Metrics) RecordEvaluation(score float64, verdict string) {
	m.EvaluationScore.Record(context.Background(), score, metric.WithAttributes(
		attribute.String("rag.verdict", verdict),
	))
}

// RecordCircuitBreakerState records a circuit breaker transition.
func (m *Metrics) RecordCircuitBreakerState(service, state string) {
	m.CircuitBreakerState.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("state", state),
	))
}
