package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows browser calls from the configured origins.
// Patterns may be exact origins, "*", or wildcard subdomains like
// *.example.com.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	patterns := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			patterns = append(patterns, origin)
		}
	}

	return cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
		AllowOriginFunc: func(origin string) bool {
			for _, pattern := range patterns {
				if originMatches(origin, pattern) {
					return true
				}
			}
			return false
		},
	})
}

func originMatches(origin, pattern string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasPrefix(pattern, "*."):
		// Keep the dot so evil-example.com cannot match *.example.com
		return strings.HasSuffix(origin, pattern[1:])
	default:
		return origin == pattern
	}
}
