package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lawexam-backend/internal/shared/auth"
	"lawexam-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
)

// Auth validates Bearer tokens and stores the caller identity in context.
// Routes under /api/v1/auth/ (register, login) are exempt.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v1/auth/register") || strings.HasPrefix(path, "/api/v1/auth/login") {
			c.Next()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		claims, err := auth.Verify(secret, token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(userIDKey, claims.Subject)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		c.Next()
	}
}

// UserIDFromContext returns the authenticated user ID stored by Auth.
func UserIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(userIDKey)
	return id, id != ""
}

// UserEmailFromContext returns the authenticated user email, if present.
func UserEmailFromContext(c *gin.Context) string {
	return c.GetString(userEmailKey)
}
