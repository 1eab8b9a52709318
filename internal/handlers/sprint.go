package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker/internal/dto"
	apierrors "github.com/yukikurage/sprint-tracker/internal/errors"
	"github.com/yukikurage/sprint-tracker/internal/middleware"
	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/services"
)

type SprintHandler struct {
	sprints *services.SprintService
}

func NewSprintHandler(sprints *services.SprintService) *SprintHandler {
	return &SprintHandler{sprints: sprints}
}

func renderSprint(sp models.Sprint) any {
	return dto.ToSprintDTO(sp)
}

// ListSprints returns every sprint
func (h *SprintHandler) ListSprints(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sprints": dto.ToSprintDTOs(h.sprints.ListSprints()),
	})
}

// GetActiveSprint returns the active sprint, or null
func (h *SprintHandler) GetActiveSprint(c *gin.Context) {
	sp, ok := h.sprints.ActiveSprint()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"sprint": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sprint": dto.ToSprintDTO(sp)})
}

// GetSprint returns one sprint
func (h *SprintHandler) GetSprint(c *gin.Context) {
	sp, err := h.sprints.GetSprint(c.Param("id"))
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, dto.ToSprintDTO(sp))
}

// CreateSprint creates a sprint in planning status
func (h *SprintHandler) CreateSprint(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateSprintRequest struct {
		Name      string    `json:"name" binding:"required"`
		Goal      string    `json:"goal"`
		StartDate time.Time `json:"start_date" binding:"required"`
		EndDate   time.Time `json:"end_date" binding:"required"`
	}

	var req CreateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	m, err := h.sprints.CreateSprint(services.CreateSprintInput{
		Name:      req.Name,
		Goal:      req.Goal,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		CreatedBy: userID,
	})
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusCreated, m, renderSprint)
}

// UpdateSprint changes name, goal or dates
func (h *SprintHandler) UpdateSprint(c *gin.Context) {
	type UpdateSprintRequest struct {
		Name      *string    `json:"name"`
		Goal      *string    `json:"goal"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	}

	var req UpdateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	m, err := h.sprints.UpdateSprint(c.Param("id"), services.UpdateSprintInput{
		Name:      req.Name,
		Goal:      req.Goal,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, renderSprint)
}

// SetSprintStatus changes the sprint status; activating one completes the
// previously active sprint
func (h *SprintHandler) SetSprintStatus(c *gin.Context) {
	type StatusRequest struct {
		Status models.SprintStatus `json:"status" binding:"required"`
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	m, err := h.sprints.SetSprintStatus(c.Param("id"), req.Status)
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, renderSprint)
}

// DeleteSprint removes a sprint. Assigned tasks keep their reference,
// which then reads as no sprint.
func (h *SprintHandler) DeleteSprint(c *gin.Context) {
	m, err := h.sprints.DeleteSprint(c.Param("id"))
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, func(sp models.Sprint) any {
		return gin.H{
			"message": "Sprint deleted successfully",
			"id":      sp.ID,
		}
	})
}
