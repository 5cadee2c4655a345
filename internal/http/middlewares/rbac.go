package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole is the single authorization gate: the request passes iff the
// authenticated role is one of the required roles. An empty required list
// means any authenticated role. Wrong role is 403, never 401.
func (m *AuthMiddleware) RequireRole(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		if len(required) > 0 && !contains(required, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Insufficient role for this resource",
				},
			})
			return
		}
		c.Next()
	}
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
