package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker/internal/dto"
	apierrors "github.com/yukikurage/sprint-tracker/internal/errors"
	"github.com/yukikurage/sprint-tracker/internal/middleware"
	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/services"
)

// CommentHandler serves comments on tasks and subtasks. Routes with a
// :subtask_id parameter address the subtask's thread.
type CommentHandler struct {
	comments *services.CommentService
	enricher dto.Enricher
}

func NewCommentHandler(comments *services.CommentService, enricher dto.Enricher) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		enricher: enricher,
	}
}

func scopeOf(c *gin.Context) services.CommentScope {
	return services.CommentScope{
		TaskID:    c.Param("id"),
		SubtaskID: c.Param("subtask_id"),
	}
}

func (h *CommentHandler) render(t models.Task) any {
	return h.enricher.Task(t)
}

// AddComment posts a comment as the current user
func (h *CommentHandler) AddComment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type AddCommentRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	m, err := h.comments.AddComment(scopeOf(c), req.Text, userID)
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusCreated, m, h.render)
}

// ToggleLike likes or unlikes a comment for the current user
func (h *CommentHandler) ToggleLike(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	m, err := h.comments.ToggleCommentLike(scopeOf(c), c.Param("comment_id"), userID)
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, h.render)
}

// DeleteComment removes a comment. Only its author or an administrator may
// do so.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	requester, exists := middleware.GetRequester(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	m, err := h.comments.DeleteComment(scopeOf(c), c.Param("comment_id"), requester)
	if err != nil {
		apierrors.FromError(c, err, nil)
		return
	}

	respond(c, http.StatusOK, m, h.render)
}
