package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/sprint-tracker/internal/errors"
	"github.com/yukikurage/sprint-tracker/internal/services"
)

// AddSubtask appends a subtask to the task
func (h *TaskHandler) AddSubtask(c *gin.Context) {
	type AddSubtaskRequest struct {
		Title   string     `json:"title" binding:"required"`
		DueDate *time.Time `json:"due_date"`
	}

	var req AddSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	m, err := h.tasks.AddSubtask(c.Param("id"), services.AddSubtaskInput{
		Title:   req.Title,
		DueDate: req.DueDate,
	})
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusCreated, m, h.render)
}

// RenameSubtask changes a subtask title
func (h *TaskHandler) RenameSubtask(c *gin.Context) {
	type RenameSubtaskRequest struct {
		Title string `json:"title" binding:"required"`
	}

	var req RenameSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	m, err := h.tasks.RenameSubtask(c.Param("id"), c.Param("subtask_id"), req.Title)
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, h.render)
}

// DeleteSubtask removes a subtask and its comments
func (h *TaskHandler) DeleteSubtask(c *gin.Context) {
	m, err := h.tasks.DeleteSubtask(c.Param("id"), c.Param("subtask_id"))
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, h.render)
}

// ToggleSubtask flips a subtask's completed flag
func (h *TaskHandler) ToggleSubtask(c *gin.Context) {
	m, err := h.tasks.ToggleSubtask(c.Param("id"), c.Param("subtask_id"))
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, h.render)
}

// SetSubtaskDueDate sets a subtask due date; null clears it
func (h *TaskHandler) SetSubtaskDueDate(c *gin.Context) {
	var body fields
	if err := c.ShouldBindJSON(&body); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if !body.has("due_date") {
		apierrors.BadRequest(c, "due_date is required; send null to clear it")
		return
	}
	due, err := body.nullableTime("due_date")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	m, err := h.tasks.SetSubtaskDueDate(c.Param("id"), c.Param("subtask_id"), due)
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, h.render)
}

// AssignSubtaskSprint sets a subtask's sprint independently of its task
func (h *TaskHandler) AssignSubtaskSprint(c *gin.Context) {
	var req sprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	m, err := h.sprints.AssignSubtaskToSprint(c.Param("id"), c.Param("subtask_id"), req.SprintID)
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, h.render)
}
