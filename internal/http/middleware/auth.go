package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"todosome/internal/http/response"
	"todosome/internal/lib/utilities"
)

// Authorizer resolves bearer token into user id
type Authorizer interface {
	Authorize(ctx context.Context, token string) (string, error)
}

// Auth checks bearer token and writes userID into gin and request contexts
func Auth(authorizer Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, response.KindUnauthorized, "Not authorized, no token")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, http.StatusUnauthorized, response.KindUnauthorized, "Not authorized, invalid authorization header")
			return
		}

		userID, err := authorizer.Authorize(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.KindUnauthorized, "Not authorized, token failed")
			return
		}

		c.Set(string(utilities.UserIDKey), userID)
		c.Request = c.Request.WithContext(utilities.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// UserID returns id set by Auth
func UserID(c *gin.Context) (string, bool) {
	return utilities.UserIDFromContext(c.Request.Context())
}
