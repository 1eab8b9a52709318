package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker/internal/constants"
	"github.com/yukikurage/sprint-tracker/internal/dto"
	apierrors "github.com/yukikurage/sprint-tracker/internal/errors"
	"github.com/yukikurage/sprint-tracker/internal/middleware"
	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/services"
)

// AuthHandler serves operator accounts: sign-up, the session, and the
// profile other operators see next to comments and assignments.
type AuthHandler struct {
	authService *services.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      slog.Default(),
	}
}

type signupRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"max=100"`
	AvatarURL   string `json:"avatar_url" binding:"omitempty,url"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type profileRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,max=512"`
}

// Signup registers an operator. Names listed in ADMIN_USERNAMES become
// administrators.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), services.SignupInput(req))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("Operator signed up", slog.Uint64("user_id", user.ID), slog.Bool("admin", user.IsAdmin))
	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Login checks credentials and starts a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(c.Request.Context(), services.LoginInput(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.saveSession(c, func(s sessions.Session) { s.Set(constants.ContextKeyUserID, user.ID) }) {
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout ends the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if !h.saveSession(c, func(s sessions.Session) { s.Clear() }) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the operator behind the session.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(user))
}

// UpdateProfile changes the caller's display name or avatar. Absent fields
// are kept.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.authService.UpdateProfile(c.Request.Context(), user.ID, services.ProfileInput(req))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Set(constants.ContextKeyUser, *updated)
	c.JSON(http.StatusOK, dto.ToUserDTO(*updated))
}

func (h *AuthHandler) currentUser(c *gin.Context) (models.User, bool) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return user, exists
}

func (h *AuthHandler) saveSession(c *gin.Context, change func(sessions.Session)) bool {
	session := sessions.Default(c)
	change(session)
	if err := session.Save(); err != nil {
		h.logger.Error("Failed to save session", slog.String("error", err.Error()))
		apierrors.InternalError(c, "Failed to save session")
		return false
	}
	return true
}

func (h *AuthHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	default:
		if !errors.Is(err, services.ErrNotFound) && !errors.Is(err, services.ErrValidationFailed) {
			h.logger.Error("Account request failed", slog.String("error", err.Error()))
		}
		apierrors.FromError(c, err, nil)
	}
}
