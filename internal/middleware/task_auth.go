package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker/internal/constants"
	apierrors "github.com/yukikurage/sprint-tracker/internal/errors"
	"github.com/yukikurage/sprint-tracker/internal/models"
)

// TaskGetter returns a task snapshot by id
type TaskGetter interface {
	GetTask(taskID string) (models.Task, error)
}

// RequireTask loads the task named by the :id parameter into the context
// and answers 404 when it does not exist
func RequireTask(tasks TaskGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")
		if taskID == "" {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		task, err := tasks.GetTask(taskID)
		if err != nil {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTask
func GetTask(c *gin.Context) (models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := v.(models.Task)
	return task, ok
}
