package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker/internal/dto"
	apierrors "github.com/yukikurage/sprint-tracker/internal/errors"
	"github.com/yukikurage/sprint-tracker/internal/services"
)

// DirectoryHandler lists users and app tags for assignee and context pickers
type DirectoryHandler struct {
	directory *services.DirectoryService
}

func NewDirectoryHandler(directory *services.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// ListUsers returns every account
func (h *DirectoryHandler) ListUsers(c *gin.Context) {
	users, err := h.directory.ListUsers(c.Request.Context())
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	out := make([]dto.UserDTO, len(users))
	for i, u := range users {
		out[i] = dto.ToUserDTO(u)
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// ListApps returns every app tag
func (h *DirectoryHandler) ListApps(c *gin.Context) {
	apps, err := h.directory.ListApps(c.Request.Context())
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch apps")
		return
	}
	c.JSON(http.StatusOK, gin.H{"apps": apps})
}

// CreateApp registers an app tag
func (h *DirectoryHandler) CreateApp(c *gin.Context) {
	type CreateAppRequest struct {
		ID   string `json:"id" binding:"required,max=64"`
		Name string `json:"name" binding:"required"`
	}

	var req CreateAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	app, err := h.directory.CreateApp(c.Request.Context(), req.ID, req.Name)
	if err != nil {
		if errors.Is(err, services.ErrAppExists) {
			apierrors.Conflict(c, err.Error())
			return
		}
		apierrors.FromError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, app)
}
