package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	jwtsvc "filemanager/internal/pkg/jwt"
	"filemanager/internal/pkg/response"
)

// JWTAuth validates the Bearer token and puts user_id and username into the
// gin context.
func JWTAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Unauthorized(c, "missing Authorization header")
			return
		}

		if !strings.HasPrefix(h, "Bearer ") {
			response.Unauthorized(c, "invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			response.Unauthorized(c, "empty token")
			return
		}

		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// UserID extracts the authenticated user's id from the context; 0 means no
// session.
func UserID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}
