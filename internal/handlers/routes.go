package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker/internal/middleware"
	"github.com/yukikurage/sprint-tracker/internal/services"
)

// Handlers groups every handler the API mounts
type Handlers struct {
	Auth      *AuthHandler
	Tasks     *TaskHandler
	Comments  *CommentHandler
	Sprints   *SprintHandler
	Views     *ViewHandler
	Alarms    *AlarmHandler
	Events    *EventHandler
	Directory *DirectoryHandler
}

// RegisterRoutes mounts the console API under /api. Session middleware must
// already be installed on r.
func RegisterRoutes(r *gin.Engine, h Handlers, authService *services.AuthService, taskService *services.TaskService) {
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Sprint tracker is running",
		})
	})

	requireAuth := middleware.RequireAuth(authService)
	requireTask := middleware.RequireTask(taskService)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", requireAuth, h.Auth.GetCurrentUser)
			auth.PATCH("/me", requireAuth, h.Auth.UpdateProfile)
		}

		protected := api.Group("")
		protected.Use(requireAuth)

		// Task routes
		tasks := protected.Group("/tasks")
		{
			tasks.GET("", h.Tasks.ListTasks)
			tasks.POST("", h.Tasks.CreateTask)
			tasks.GET("/:id", requireTask, h.Tasks.GetTask)
			tasks.PATCH("/:id", h.Tasks.UpdateTask)
			tasks.DELETE("/:id", h.Tasks.DeleteTask)
			tasks.PUT("/:id/status", h.Tasks.TransitionStatus)
			tasks.PUT("/:id/sprint", h.Tasks.AssignSprint)

			tasks.POST("/:id/comments", h.Comments.AddComment)
			tasks.POST("/:id/comments/:comment_id/like", h.Comments.ToggleLike)
			tasks.DELETE("/:id/comments/:comment_id", h.Comments.DeleteComment)

			tasks.POST("/:id/subtasks", h.Tasks.AddSubtask)
			tasks.POST("/:id/subtasks/suggest", requireTask, h.Tasks.SuggestSubtasks)
			tasks.PATCH("/:id/subtasks/:subtask_id", h.Tasks.RenameSubtask)
			tasks.DELETE("/:id/subtasks/:subtask_id", h.Tasks.DeleteSubtask)
			tasks.POST("/:id/subtasks/:subtask_id/toggle", h.Tasks.ToggleSubtask)
			tasks.PUT("/:id/subtasks/:subtask_id/due-date", h.Tasks.SetSubtaskDueDate)
			tasks.PUT("/:id/subtasks/:subtask_id/sprint", h.Tasks.AssignSubtaskSprint)

			tasks.POST("/:id/subtasks/:subtask_id/comments", h.Comments.AddComment)
			tasks.POST("/:id/subtasks/:subtask_id/comments/:comment_id/like", h.Comments.ToggleLike)
			tasks.DELETE("/:id/subtasks/:subtask_id/comments/:comment_id", h.Comments.DeleteComment)
		}

		// Sprint routes
		sprints := protected.Group("/sprints")
		{
			sprints.GET("", h.Sprints.ListSprints)
			sprints.POST("", h.Sprints.CreateSprint)
			sprints.GET("/active", h.Sprints.GetActiveSprint)
			sprints.GET("/:id", h.Sprints.GetSprint)
			sprints.PATCH("/:id", h.Sprints.UpdateSprint)
			sprints.PUT("/:id/status", h.Sprints.SetSprintStatus)
			sprints.DELETE("/:id", middleware.RequireAdmin(), h.Sprints.DeleteSprint)
		}

		// View routes
		views := protected.Group("/views")
		{
			views.GET("/calendar", h.Views.Calendar)
			views.GET("/board", h.Views.Board)
			views.GET("/list", h.Tasks.ListTasks)
		}

		// Alarm routes
		alarms := protected.Group("/alarms")
		{
			alarms.GET("", h.Alarms.ListAlarms)
			alarms.POST("/check", h.Alarms.Check)
			alarms.POST("/stop", h.Alarms.StopAlarm)
			alarms.PUT("/mute", h.Alarms.SetMuted)
		}

		protected.GET("/events", h.Events.Stream)

		protected.GET("/users", h.Directory.ListUsers)
		protected.GET("/apps", h.Directory.ListApps)
		protected.POST("/apps", middleware.RequireAdmin(), h.Directory.CreateApp)
	}
}
