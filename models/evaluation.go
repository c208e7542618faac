package models

// Metric names used across the evaluation engine and its report.
const (
	MetricContextRelevance = "context_relevance"
	MetricFaithfulness     = "faithfulness"
	MetricAnswerRelevance  = "answer_relevance"
	MetricCitationQuality  = "citation_quality"
)

// MetricResult is the outcome of a single evaluation metric. Verdict is
// derived from Score against Threshold, or "ERROR" when the judge output
// could not be parsed.
type MetricResult struct {
	Metric            string    `json:"metric"`
	Score             float64   `json:"score"`
	Verdict           string    `json:"verdict"`
	Threshold         float64   `json:"threshold"`
	Reasoning         string    `json:"reasoning,omitempty"`
	ContextScores     []float64 `json:"context_scores,omitempty"`
	SupportedClaims   []string  `json:"supported_claims,omitempty"`
	UnsupportedClaims []string  `json:"unsupported_claims,omitempty"`
	AnswersQuery      bool      `json:"answers_query,omitempty"`
}

// EvaluationReport aggregates the four metric results for one answer.
// Built fresh per chat request, never persisted.
type EvaluationReport struct {
	Query           string                  `json:"query"`
	Answer          string                  `json:"answer"`
	Sources         []SourceCitation        `json:"sources"`
	Metrics         map[string]MetricResult `json:"metrics"`
	OverallScore    float64                 `json:"overall_score"`
	OverallVerdict  string                  `json:"overall_verdict"`
	Recommendations []string                `json:"recommendations"`
}
