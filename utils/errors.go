package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body every failed request returns. RequestID
// echoes the X-Request-ID header so clients can quote it in bug reports.
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError writes the standard error body and aborts the handler
// chain so later handlers cannot overwrite the status.
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Details:   details,
	})
}

// RespondWithBadRequest rejects malformed or invalid client input.
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithNotFound reports a missing resource.
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, "not_found", message, nil)
}

// RespondWithUpstreamError reports a failure of the embedding or
// completion backend as a 502 so callers can distinguish it from bugs in
// this service.
func RespondWithUpstreamError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadGateway, "upstream_error", message, details)
}

// RespondWithInternalError reports an unexpected server-side failure.
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}
