package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seembe/seembe/internal/authz"
)

// RequireAdmin gates the admin-only user management routes. It must run
// after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role != authz.RoleAdmin {
			// mirror the original: non-admins get a 401, not a 403
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Not authorized as an admin",
				},
			})
			return
		}
		c.Next()
	}
}
