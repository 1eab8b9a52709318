package middleware

import (
	"context"
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker/internal/constants"
	apierrors "github.com/yukikurage/sprint-tracker/internal/errors"
	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/services"
)

// UserLoader loads the account behind a session
type UserLoader interface {
	GetUser(ctx context.Context, id uint64) (*models.User, error)
}

// RequireAuth checks if the user is authenticated via session and loads
// the account into the context
func RequireAuth(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)

		if userID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)

		id, ok := GetUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "Invalid session")
			c.Abort()
			return
		}

		user, err := users.GetUser(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				session.Clear()
				_ = session.Save()
				apierrors.Unauthorized(c, "Account no longer exists")
			} else {
				apierrors.InternalError(c, "Failed to load account")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUser, *user)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetCurrentUser retrieves the account loaded by RequireAuth
func GetCurrentUser(c *gin.Context) (models.User, bool) {
	v, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// GetRequester returns the caller identity used for authorization
func GetRequester(c *gin.Context) (services.Requester, bool) {
	user, ok := GetCurrentUser(c)
	if !ok {
		return services.Requester{}, false
	}
	return services.Requester{UserID: user.ID, IsAdmin: user.IsAdmin}, true
}
