package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"alive-chat/internal/auth"
)

// Context keys set for authenticated requests.
const (
	CtxUserID    = "userID"
	CtxUserEmail = "userEmail"
)

// AuthMiddleware validates the Authorization header against the auth
// service and stores the viewer's display id on the context.
func AuthMiddleware(validator auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		user, err := validator.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(CtxUserID, user.DisplayID())
		c.Set(CtxUserEmail, user.Email)
		c.Next()
	}
}
