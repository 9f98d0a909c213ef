package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/movein/movein-api/services"
)

const userIDKey = "user_id"

// AuthMiddleware requires a valid access token and stores its user id on the
// context. Both failures answer 403.
func AuthMiddleware(tokens *services.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied. No token provided."})
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		userID, err := tokens.Verify(tokenString, services.TokenTypeAccess)
		if err != nil {
			slog.DebugContext(c.Request.Context(), "token rejected",
				slog.String("request_id", c.GetString(requestIDKey)),
				slog.Any("error", err),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token."})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// GetUserID retrieves the authenticated user ID from the Gin context
func GetUserID(c *gin.Context) uint {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return 0
	}
	id, _ := userID.(uint)
	return id
}
