package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/internal/telemetry"
	"rag-chatbot-platform/models"
)

// Evaluation runs at low temperature for consistent judging.
const evalTemperature = 0.1

// Contexts are truncated before judging to keep evaluation prompts small.
const contextEvalLimit = 500

// Per-metric pass thresholds and report weights. Weights sum to 1.0.
const (
	contextRelevanceThreshold = 0.7
	faithfulnessThreshold     = 0.8
	answerRelevanceThreshold  = 0.7
	citationQualityThreshold  = 0.6

	contextRelevanceWeight = 0.25
	faithfulnessWeight     = 0.35
	answerRelevanceWeight  = 0.25
	citationQualityWeight  = 0.15

	overallPassThreshold = 0.7
)

const contextRelevancePrompt = `Evaluate the relevance of each context to the query.
Rate each context on a scale of 0-1 (0=completely irrelevant, 1=highly relevant).

Query: %s

%s

Respond with only a JSON object in this exact format:
{"context_scores": [0.8, 0.3], "reasoning": "brief explanation"}`

const faithfulnessPrompt = `Evaluate if the answer is faithful to the provided contexts.
Check if all claims in the answer are supported by the contexts.
Identify any hallucinations or unsupported statements.

Contexts:
%s

Answer: %s

Respond with only a JSON object in this exact format:
{"score": 0.9, "supported_claims": ["..."], "unsupported_claims": ["..."], "reasoning": "brief explanation"}`

const answerRelevancePrompt = `Evaluate if the answer is relevant to and addresses the query.

Query: %s

Answer: %s

Respond with only a JSON object in this exact format:
{"score": 0.9, "answers_query": true, "reasoning": "brief explanation"}`

const citationQualityPrompt = `Evaluate the citation quality of the answer.
Check whether the answer's claims are traceable to the cited sources.

Sources:
%s

Answer: %s

Respond with only a JSON object in this exact format:
{"score": 0.9, "reasoning": "brief explanation"}`

// Evaluator judges answers along four dimensions using the completion
// model itself. It never returns an error: an unreachable model or
// unparseable output degrades the affected metric to a zero-scored
// default instead of failing the request.
type Evaluator struct {
	completer Completer
	metrics   *telemetry.Metrics
}

func NewEvaluator(completer Completer, metrics *telemetry.Metrics) *Evaluator {
	return &Evaluator{completer: completer, metrics: metrics}
}

// Evaluate runs the four metrics concurrently and assembles the weighted
// report.
func (e *Evaluator) Evaluate(ctx context.Context, query, answer string, contexts []string, sources []models.SourceCitation) *models.EvaluationReport {
	truncated := truncateForEval(contexts)

	var contextRel, faith, answerRel, citation models.MetricResult

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		contextRel = e.evaluateContextRelevance(ctx, query, truncated)
	}()
	go func() {
		defer wg.Done()
		faith = e.evaluateFaithfulness(ctx, answer, truncated)
	}()
	go func() {
		defer wg.Done()
		answerRel = e.evaluateAnswerRelevance(ctx, query, answer)
	}()
	go func() {
		defer wg.Done()
		citation = e.evaluateCitationQuality(ctx, answer, sources)
	}()
	wg.Wait()

	report := &models.EvaluationReport{
		Query:   query,
		Answer:  answer,
		Sources: sources,
		Metrics: map[string]models.MetricResult{
			models.MetricContextRelevance: contextRel,
			models.MetricFaithfulness:     faith,
			models.MetricAnswerRelevance:  answerRel,
			models.MetricCitationQuality:  citation,
		},
	}

	overall := contextRel.Score*contextRelevanceWeight +
		faith.Score*faithfulnessWeight +
		answerRel.Score*answerRelevanceWeight +
		citation.Score*citationQualityWeight
	report.OverallScore = round3(overall)
	if report.OverallScore >= overallPassThreshold {
		report.OverallVerdict = "PASS"
	} else {
		report.OverallVerdict = "FAIL"
	}
	report.Recommendations = buildRecommendations(contextRel, faith, answerRel, citation)

	if e.metrics != nil {
		e.metrics.RecordEvaluation(report.OverallScore, report.OverallVerdict)
	}
	logger.Info("Evaluation completed",
		"overall_score", report.OverallScore,
		"verdict", report.OverallVerdict)

	return report
}

func (e *Evaluator) evaluateContextRelevance(ctx context.Context, query string, contexts []string) models.MetricResult {
	result := models.MetricResult{
		Metric:    models.MetricContextRelevance,
		Threshold: contextRelevanceThreshold,
	}

	blocks := make([]string, len(contexts))
	for i, c := range contexts {
		blocks[i] = fmt.Sprintf("Context %d: %s", i+1, c)
	}

	raw, err := e.completer.Complete(ctx, fmt.Sprintf(contextRelevancePrompt, query, strings.Join(blocks, "\n\n")), evalTemperature)
	if err != nil {
		logger.Warn("Context relevance evaluation failed", "error", err)
		return errorMetric(result)
	}

	var parsed struct {
		ContextScores []float64 `json:"context_scores"`
		Reasoning     string    `json:"reasoning"`
	}
	if !parseMetricJSON(raw, &parsed) {
		logger.Debug("Unparseable context relevance output", "raw", raw)
		return errorMetric(result)
	}

	scores := make([]float64, len(parsed.ContextScores))
	var sum float64
	for i, s := range parsed.ContextScores {
		scores[i] = clampScore(s)
		sum += scores[i]
	}
	if len(scores) > 0 {
		result.Score = sum / float64(len(scores))
	}
	result.ContextScores = scores
	result.Reasoning = parsed.Reasoning
	result.Verdict = verdictFor(result.Score >= result.Threshold, "PASS", "FAIL")
	return result
}

func (e *Evaluator) evaluateFaithfulness(ctx context.Context, answer string, contexts []string) models.MetricResult {
	result := models.MetricResult{
		Metric:    models.MetricFaithfulness,
		Threshold: faithfulnessThreshold,
	}

	blocks := make([]string, len(contexts))
	for i, c := range contexts {
		blocks[i] = fmt.Sprintf("Context %d: %s", i+1, c)
	}

	raw, err := e.completer.Complete(ctx, fmt.Sprintf(faithfulnessPrompt, strings.Join(blocks, "\n\n"), answer), evalTemperature)
	if err != nil {
		logger.Warn("Faithfulness evaluation failed", "error", err)
		return errorMetric(result)
	}

	var parsed struct {
		Score             float64  `json:"score"`
		SupportedClaims   []string `json:"supported_claims"`
		UnsupportedClaims []string `json:"unsupported_claims"`
		Reasoning         string   `json:"reasoning"`
	}
	if !parseMetricJSON(raw, &parsed) {
		logger.Debug("Unparseable faithfulness output", "raw", raw)
		return errorMetric(result)
	}

	result.Score = clampScore(parsed.Score)
	result.SupportedClaims = parsed.SupportedClaims
	result.UnsupportedClaims = parsed.UnsupportedClaims
	result.Reasoning = parsed.Reasoning
	result.Verdict = verdictFor(result.Score >= result.Threshold, "FAITHFUL", "UNFAITHFUL")
	return result
}

func (e *Evaluator) evaluateAnswerRelevance(ctx context.Context, query, answer string) models.MetricResult {
	result := models.MetricResult{
		Metric:    models.MetricAnswerRelevance,
		Threshold: answerRelevanceThreshold,
	}

	raw, err := e.completer.Complete(ctx, fmt.Sprintf(answerRelevancePrompt, query, answer), evalTemperature)
	if err != nil {
		logger.Warn("Answer relevance evaluation failed", "error", err)
		return errorMetric(result)
	}

	var parsed struct {
		Score        float64 `json:"score"`
		AnswersQuery bool    `json:"answers_query"`
		Reasoning    string  `json:"reasoning"`
	}
	if !parseMetricJSON(raw, &parsed) {
		logger.Debug("Unparseable answer relevance output", "raw", raw)
		return errorMetric(result)
	}

	result.Score = clampScore(parsed.Score)
	result.AnswersQuery = parsed.AnswersQuery
	result.Reasoning = parsed.Reasoning
	result.Verdict = verdictFor(result.Score >= result.Threshold, "RELEVANT", "IRRELEVANT")
	return result
}

func (e *Evaluator) evaluateCitationQuality(ctx context.Context, answer string, sources []models.SourceCitation) models.MetricResult {
	result := models.MetricResult{
		Metric:    models.MetricCitationQuality,
		Threshold: citationQualityThreshold,
	}

	lines := make([]string, len(sources))
	for i, s := range sources {
		lines[i] = fmt.Sprintf("%d. %s (Page %s)", i+1, s.File, s.Page)
	}

	raw, err := e.completer.Complete(ctx, fmt.Sprintf(citationQualityPrompt, strings.Join(lines, "\n"), answer), evalTemperature)
	if err != nil {
		logger.Warn("Citation quality evaluation failed", "error", err)
		return errorMetric(result)
	}

	var parsed struct {
		Score     float64 `json:"score"`
		Reasoning string  `json:"reasoning"`
	}
	if !parseMetricJSON(raw, &parsed) {
		logger.Debug("Unparseable citation quality output", "raw", raw)
		return errorMetric(result)
	}

	result.Score = clampScore(parsed.Score)
	result.Reasoning = parsed.Reasoning
	result.Verdict = verdictFor(result.Score >= result.Threshold, "PASS", "FAIL")
	return result
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// parseMetricJSON tries three tiers: the whole response as JSON, the
// first fenced code block, then the first balanced brace span. The model
// cannot be trusted to honor formatting instructions.
func parseMetricJSON(raw string, v interface{}) bool {
	trimmed := strings.TrimSpace(raw)
	if json.Unmarshal([]byte(trimmed), v) == nil {
		return true
	}

	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		if json.Unmarshal([]byte(strings.TrimSpace(m[1])), v) == nil {
			return true
		}
	}

	if span := braceSpan(raw); span != "" {
		if json.Unmarshal([]byte(span), v) == nil {
			return true
		}
	}

	return false
}

// braceSpan returns the first balanced top-level brace span in text.
func braceSpan(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// errorMetric fills the default object used when evaluation output is
// unusable.
func errorMetric(m models.MetricResult) models.MetricResult {
	m.Score = 0.0
	m.Verdict = "ERROR"
	m.Reasoning = "Failed to parse evaluation"
	return m
}

func buildRecommendations(contextRel, faith, answerRel, citation models.MetricResult) []string {
	var recs []string

	if contextRel.Score < contextRelevanceThreshold {
		recs = append(recs, metricWarning("context relevance", contextRel, "Consider adjusting chunk size or Top K parameter"))
	}
	if faith.Score < faithfulnessThreshold {
		recs = append(recs, metricWarning("faithfulness", faith, "Reduce temperature or improve prompt instructions"))
	}
	if answerRel.Score < answerRelevanceThreshold {
		recs = append(recs, metricWarning("answer relevance", answerRel, "Review query or improve context retrieval"))
	}
	if citation.Score < citationQualityThreshold {
		recs = append(recs, metricWarning("citation quality", citation, "Require explicit source citations in the prompt"))
	}

	if len(recs) == 0 {
		recs = append(recs, "✅ All metrics performing well!")
	}
	return recs
}

func metricWarning(label string, m models.MetricResult, remediation string) string {
	msg := fmt.Sprintf("⚠️ Low %s (%.2f) - %s", label, m.Score, remediation)
	if m.Reasoning != "" {
		msg += fmt.Sprintf(" (%s)", m.Reasoning)
	}
	return msg
}

func verdictFor(pass bool, passLabel, failLabel string) string {
	if pass {
		return passLabel
	}
	return failLabel
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

func truncateForEval(contexts []string) []string {
	out := make([]string, len(contexts))
	for i, c := range contexts {
		if len(c) > contextEvalLimit {
			cut := contextEvalLimit
			for cut > 0 && !utf8.RuneStart(c[cut]) {
				cut--
			}
			c = c[:cut]
		}
		out[i] = c
	}
	return out
}
