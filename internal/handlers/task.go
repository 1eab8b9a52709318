package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker/internal/dto"
	apierrors "github.com/yukikurage/sprint-tracker/internal/errors"
	"github.com/yukikurage/sprint-tracker/internal/middleware"
	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/services"
	"github.com/yukikurage/sprint-tracker/internal/utils"
	"github.com/yukikurage/sprint-tracker/internal/views"
)

type TaskHandler struct {
	tasks     *services.TaskService
	sprints   *services.SprintService
	aiService *services.AIService
	directory views.Directory
	enricher  dto.Enricher
	pageSize  int
	logger    *slog.Logger
}

func NewTaskHandler(tasks *services.TaskService, sprints *services.SprintService, directory views.Directory, aiService *services.AIService, pageSize int) *TaskHandler {
	return &TaskHandler{
		tasks:     tasks,
		sprints:   sprints,
		aiService: aiService,
		directory: directory,
		enricher:  dto.Enricher{Sprints: sprints, Names: directory},
		pageSize:  pageSize,
		logger:    slog.Default(),
	}
}

func (h *TaskHandler) render(t models.Task) any {
	return h.enricher.Task(t)
}

// ListTasks returns the list view: search, status and priority filters,
// completed tasks last, paginated
func (h *TaskHandler) ListTasks(c *gin.Context) {
	params := utils.GetPaginationParams(c, h.pageSize)

	filter := views.ListFilter{
		Query:    c.Query("q"),
		Page:     params.Page,
		PageSize: params.Limit,
	}
	for _, s := range queryList(c, "status") {
		status := models.TaskStatus(s)
		if !status.Valid() {
			apierrors.BadRequest(c, "Invalid status filter: "+s)
			return
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, p := range queryList(c, "priority") {
		priority := models.Priority(p)
		if !priority.Valid() {
			apierrors.BadRequest(c, "Invalid priority filter: "+p)
			return
		}
		filter.Priorities = append(filter.Priorities, priority)
	}

	page := views.List(h.tasks.ListTasks(), filter, h.directory)
	c.JSON(http.StatusOK, h.enricher.ListResponse(page))
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, h.render(task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string            `json:"title" binding:"required"`
		Description string            `json:"description"`
		Priority    models.Priority   `json:"priority"`
		Status      models.TaskStatus `json:"status"`
		DueDate     *time.Time        `json:"due_date"`
		AssignedTo  *uint64           `json:"assigned_to"`
		AppID       *string           `json:"app_id"`
		SprintID    *string           `json:"sprint_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	m, err := h.tasks.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
		AppID:       req.AppID,
		SprintID:    req.SprintID,
		CreatedBy:   userID,
	})
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusCreated, m, h.render)
}

// UpdateTask updates only the fields present in the body. assigned_to and
// app_id accept null to clear them.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var body fields
	if err := c.ShouldBindJSON(&body); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput
	var title, description string
	var priority models.Priority
	var assignee uint64
	var appID string

	decoders := []struct {
		key  string
		dest any
		set  func()
	}{
		{"title", &title, func() { input.Title = &title }},
		{"description", &description, func() { input.Description = &description }},
		{"priority", &priority, func() { input.Priority = &priority }},
	}
	for _, d := range decoders {
		found, err := body.decode(d.key, d.dest)
		if err != nil {
			apierrors.BadRequest(c, err.Error())
			return
		}
		if found {
			d.set()
		}
	}

	due, err := body.nullableTime("due_date")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	input.DueDate = due

	if body.isNull("assigned_to") {
		input.ClearAssignee = true
	} else if found, err := body.decode("assigned_to", &assignee); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	} else if found {
		input.AssignedTo = &assignee
	}

	if body.isNull("app_id") {
		input.ClearApp = true
	} else if found, err := body.decode("app_id", &appID); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	} else if found {
		input.AppID = &appID
	}

	m, err := h.tasks.UpdateTask(c.Param("id"), input)
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, h.render)
}

// DeleteTask deletes a task with its subtasks and comments
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	m, err := h.tasks.DeleteTask(c.Param("id"))
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, func(t models.Task) any {
		return gin.H{
			"message": "Task deleted successfully",
			"id":      t.ID,
		}
	})
}

// TransitionStatus moves a task to another status
func (h *TaskHandler) TransitionStatus(c *gin.Context) {
	type StatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	m, err := h.tasks.TransitionStatus(c.Param("id"), req.Status)
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, h.render)
}

type sprintRequest struct {
	SprintID *string `json:"sprint_id"`
}

// AssignSprint sets or, with a null sprint_id, removes the task's sprint
func (h *TaskHandler) AssignSprint(c *gin.Context) {
	var req sprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	m, err := h.sprints.AssignTaskToSprint(c.Param("id"), req.SprintID)
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, h.render)
}

// SuggestSubtasks asks the AI service for checklist items. Nothing is
// added; the console submits the ones the operator keeps.
func (h *TaskHandler) SuggestSubtasks(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	// Check if AI service is available
	if h.aiService == nil {
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
		return
	}

	suggestions, err := h.aiService.SuggestSubtasks(c.Request.Context(), task)
	if err != nil {
		if errors.Is(err, services.ErrAINoSubtasksGenerated) {
			c.JSON(http.StatusOK, gin.H{"subtasks": []services.SuggestedSubtask{}})
			return
		}
		h.logger.Warn("Subtask suggestion failed", slog.String("task_id", task.ID), slog.String("error", err.Error()))
		apierrors.ServiceUnavailable(c, "Failed to generate subtasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subtasks": suggestions,
	})
}

// queryList accepts both repeated parameters and comma separated values
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
