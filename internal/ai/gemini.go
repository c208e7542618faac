package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rag-chatbot-platform/internal/config"
	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/internal/telemetry"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// GeminiClient wraps the Generative AI SDK with rate limiting, a circuit
// breaker and token bookkeeping. It serves both pipeline collaborators:
// Complete (answer generation, evaluation judging) and Embed (indexing,
// query embedding).
type GeminiClient struct {
	cfg          *config.Config
	client       *genai.Client
	breaker      *gobreaker.CircuitBreaker
	rateLimiter  *rate.Limiter
	tokenCounter *TokenCounter
	metrics      *telemetry.Metrics
}

type TokenCounter struct {
	mu              sync.Mutex
	limits          RateLimits
	minuteTokens    int
	dailyTokens     int
	minuteRequests  int
	dailyRequests   int
	lastMinuteReset time.Time
	lastDayReset    time.Time
}

type RateLimits struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
	RPD int // Requests per day
}

// NewGeminiClient builds the shared client. metrics may be nil when
// telemetry is disabled.
func NewGeminiClient(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	limits := getRateLimits(cfg.GeminiTier)

	gc := &GeminiClient{
		cfg:          cfg,
		client:       client,
		rateLimiter:  newRateLimiter(limits),
		tokenCounter: &TokenCounter{limits: limits},
		metrics:      metrics,
	}

	gc.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			if gc.metrics != nil {
				gc.metrics.RecordCircuitBreakerState(name, to.String())
			}
		},
	})

	return gc, nil
}

func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	case "tier1":
		return RateLimits{RPM: 1000, TPM: 1000000, RPD: 10000}
	case "tier2":
		return RateLimits{RPM: 2000, TPM: 4000000, RPD: 50000}
	default:
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	}
}

// newRateLimiter paces requests at 90% of the tier's RPM. Burst is a
// tenth of the RPM, at least one so small tiers can still send.
func newRateLimiter(limits RateLimits) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), max(limits.RPM/10, 1))
}

// Complete sends a prompt to the configured completion model at the given
// temperature and returns the raw response text.
func (gc *GeminiClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_content")
	defer span.End()

	estimatedTokens := estimateTokens(prompt)
	span.SetAttributes(
		attribute.Int("gemini.estimated_tokens", estimatedTokens),
		attribute.Float64("gemini.temperature", temperature),
		attribute.String("gemini.model", gc.cfg.GeminiModel),
	)

	if !gc.tokenCounter.CanConsume(estimatedTokens, 1) {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", errors.New("rate limit exceeded: wait before retry")
	}

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.cfg.GeminiModel)
		model.SetTemperature(float32(temperature))
		model.SetMaxOutputTokens(2048)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			span.SetAttributes(attribute.Bool("gemini.error", true))
			span.SetAttributes(attribute.String("gemini.error_message", err.Error()))
			return nil, err
		}

		actualTokens := extractTokenUsage(resp)
		gc.tokenCounter.RecordUsage(actualTokens, 1)
		if gc.metrics != nil {
			gc.metrics.RecordTokensUsed(int64(actualTokens), gc.cfg.GeminiModel)
		}

		span.SetAttributes(attribute.Int("gemini.actual_tokens", actualTokens))

		return resp, nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
			return "", fmt.Errorf("completion service unavailable: %w", err)
		}
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", err
	}

	text := responseText(result.(*genai.GenerateContentResponse))
	if text == "" {
		return "", errors.New("no text in completion response")
	}

	span.SetAttributes(attribute.Bool("gemini.success", true))
	return text, nil
}

// Embed returns the embedding vector for the given text.
func (gc *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.embed_content")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", gc.cfg.GeminiEmbeddingModel),
		attribute.Int("gemini.text_length", len(text)),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return nil, err
	}

	model := gc.client.EmbeddingModel(gc.cfg.GeminiEmbeddingModel)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return nil, err
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, errors.New("no embedding returned")
	}

	return resp.Embedding.Values, nil
}

// EmbedTexts embeds a batch of texts one request at a time, paced by the
// shared rate limiter.
func (gc *GeminiClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vec, err := gc.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d of %d: %w", i+1, len(texts), err)
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (tc *TokenCounter) CanConsume(tokens, requests int) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	now := time.Now()

	// Reset counters if time windows expired
	if now.Sub(tc.lastMinuteReset) >= time.Minute {
		tc.minuteTokens = 0
		tc.minuteRequests = 0
		tc.lastMinuteReset = now
	}

	if now.Sub(tc.lastDayReset) >= 24*time.Hour {
		tc.dailyTokens = 0
		tc.dailyRequests = 0
		tc.lastDayReset = now
	}

	if tc.minuteRequests+requests > tc.limits.RPM {
		return false
	}
	if tc.minuteTokens+tokens > tc.limits.TPM {
		return false
	}
	if tc.dailyRequests+requests > tc.limits.RPD {
		return false
	}

	return true
}

func (tc *TokenCounter) RecordUsage(tokens, requests int) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.minuteTokens += tokens
	tc.minuteRequests += requests
	tc.dailyTokens += tokens
	tc.dailyRequests += requests
}

// Rough estimation: 1 token ≈ 4 characters
func estimateTokens(prompt string) int {
	estimated := len(prompt) / 4
	if estimated < 1 {
		estimated = 1
	}
	return estimated
}

// Extract token usage from Gemini response, falling back to an estimate
// when the metadata is missing.
func extractTokenUsage(resp *genai.GenerateContentResponse) int {
	if resp.UsageMetadata != nil {
		return int(resp.UsageMetadata.TotalTokenCount)
	}

	return estimateTokens(responseText(resp))
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	totalText := ""
	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				totalText += string(text)
			}
		}
	}

	return totalText
}

// Close the client
func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
