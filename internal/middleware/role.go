package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/washpoint/backend/internal/auth"
	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles. Must run
// after JWT.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		val, ok := c.Get(auth.ContextClaims)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		claims := val.(*auth.Claims)
		if _, ok := allowed[claims.Role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
