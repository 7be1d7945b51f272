package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDHeader     = "X-User-ID"
	ContextUserIDKey = "userID"
)

// UserContextMiddleware resolves the caller's identity from the
// X-User-ID header set by the authenticating edge proxy. The service
// itself does not verify credentials; it trusts the gateway and only
// requires that an identity is present.
func UserContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(userIDHeader))
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user identity header required"})
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)

		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	id, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	idStr, ok := id.(string)
	return idStr, ok
}
