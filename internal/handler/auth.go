package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireSweepSecret guards scheduler-facing endpoints with a shared
// bearer secret. The comparison is constant-time.
func RequireSweepSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			respondError(c, http.StatusInternalServerError, "sweep secret is not configured")
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(c, http.StatusUnauthorized, "missing or malformed authorization header")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			respondError(c, http.StatusUnauthorized, "invalid credentials")
			c.Abort()
			return
		}

		c.Next()
	}
}
