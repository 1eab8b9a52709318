package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/sprint-tracker/internal/errors"
)

// RequireAdmin allows only administrators through. It must run after
// RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !user.IsAdmin {
			apierrors.Forbidden(c, "Administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
