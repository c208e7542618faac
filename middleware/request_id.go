package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the caller-supplied or generated request ID.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestIDMiddleware tags every request with an ID, honoring one
// supplied by the caller, and echoes it in the response so log lines can
// be correlated with client reports.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the ID set by RequestIDMiddleware, or "" outside
// of it.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
