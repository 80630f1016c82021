package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/acadlabs/bibliometer/internal/database"
)

const principalKey = "principal"

// Middleware authenticates requests via a Bearer token and sets the resolved
// principal in the Gin context. The user must still exist and be active; the
// role is read from the database, not the token, so role changes take effect
// immediately.
func Middleware(tokens *TokenService, repo *database.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "You are not logged in.",
			})
			return
		}

		principal, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token.",
			})
			return
		}

		user, err := repo.GetUserByID(principal.UserID)
		if err != nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "The user behind this token no longer exists.",
			})
			return
		}

		c.Set(principalKey, Principal{UserID: user.ID, Role: user.Role})
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. Must run after
// Middleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := FromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "You are not logged in.",
			})
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "You do not have permission to perform this action.",
		})
	}
}

// FromContext returns the authenticated principal set by Middleware.
func FromContext(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	principal, ok := v.(Principal)
	return principal, ok
}
