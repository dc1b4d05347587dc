package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lawexam-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		telemetry.L().Info().
			Str("request_id", RequestIDFromContext(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Float64("duration_ms", float64(latency.Microseconds())/1000.0).
			Str("user_id", c.GetString(userIDKey)).
			Str("client_ip", c.ClientIP()).
			Msg("request.complete")
	}
}
