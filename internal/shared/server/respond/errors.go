package respond

import (
	"github.com/gin-gonic/gin"

	"lawexam-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response. Internal error detail is
// logged; the client only sees code and message.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	evt := telemetry.L().Error().
		Int("status", status).
		Str("code", code).
		Str("message", message).
		Str("path", c.Request.URL.Path).
		Str("method", c.Request.Method).
		Str("request_id", c.GetString("requestId"))
	if userID := c.GetString("userId"); userID != "" {
		evt = evt.Str("user_id", userID)
	}
	evt.Msg("http.error")

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
