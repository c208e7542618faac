package middleware

import (
	"time"

	"rag-chatbot-platform/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware wraps requests in OpenTelemetry server spans.
func TracingMiddleware() gin.HandlerFunc {
	return otelgin.Middleware("rag-chatbot-platform")
}

// EnrichTrace attaches caller identity and the response outcome to the
// active span. Method and URL are already recorded by otelgin.
func EnrichTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		span.SetAttributes(
			attribute.String("http.client_ip", c.ClientIP()),
			attribute.String("http.user_agent", c.Request.UserAgent()),
			attribute.String("request.id", GetRequestID(c)),
		)

		c.Next()

		span.SetAttributes(
			attribute.Int("http.response.status_code", c.Writer.Status()),
			attribute.Int("http.response.size", c.Writer.Size()),
		)
	}
}

// MetricsMiddleware feeds request counts and latencies to the metrics
// registry.
func MetricsMiddleware(metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		outcome := "success"
		if c.Writer.Status() >= 400 {
			outcome = "error"
		}
		metrics.RecordRequest(c.Request.Method, c.Request.URL.Path, outcome, time.Since(start).Seconds())
	}
}
