package tenant

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/washpoint/backend/internal/auth"
	"github.com/washpoint/backend/pkg/response"
)

// ContextScope is the gin context key holding the resolved Scope.
const ContextScope = "tenant_scope"

// Middleware resolves the tenant scope from the validated JWT claims and an
// optional ?shop_id= selection (honored for super operators only). Must run
// after the JWT middleware. Requests from non-super principals without a shop
// binding are rejected before any domain logic runs.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := c.Get(auth.ContextClaims)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		claims := val.(*auth.Claims)

		var selected *int64
		if raw := c.Query("shop_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				response.BadRequest(c, "invalid shop_id")
				c.Abort()
				return
			}
			selected = &id
		}

		scope, err := Resolve(claims.Role, claims.ShopID, selected)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextScope, scope)
		c.Next()
	}
}

// FromContext returns the scope resolved by Middleware.
func FromContext(c *gin.Context) Scope {
	return c.MustGet(ContextScope).(Scope)
}
