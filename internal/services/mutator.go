package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yukikurage/sprint-tracker/internal/clock"
	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/repository"
	"github.com/yukikurage/sprint-tracker/internal/store"
)

// CompletionCue is the one-shot signal played when an item is completed.
type CompletionCue interface {
	PlayCompletionCue()
}

type noCue struct{}

func (noCue) PlayCompletionCue() {}

// taskWriter applies a change to the store, then queues a partial update
// with only the touched columns. The lock keeps store order and write
// order identical.
type taskWriter struct {
	mu     sync.Mutex
	store  *store.Store
	repo   repository.TaskRepository
	writer *Writer
	clock  clock.Clock
}

func (w *taskWriter) now() time.Time {
	return w.clock.Now()
}

// apply runs fn on the task, stamps updated_at, and persists columns.
func (w *taskWriter) apply(taskID string, columns []string, fn func(t *models.Task) error) (Mutation[models.Task], error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	updated, found, err := w.store.UpdateTask(taskID, func(t *models.Task) error {
		if err := fn(t); err != nil {
			return err
		}
		t.UpdatedAt = now
		return nil
	})
	if !found {
		return Mutation[models.Task]{}, ErrTaskNotFound
	}
	if err != nil {
		return Mutation[models.Task]{}, err
	}

	fields := taskFields(updated, append(columns, "updated_at"))
	pending := w.writer.Submit(fmt.Sprintf("update task %s", taskID), func(ctx context.Context) error {
		return w.repo.Update(ctx, taskID, fields)
	})
	return Mutation[models.Task]{Value: updated, Persist: pending}, nil
}

// taskFields maps column names to the values of t.
func taskFields(t models.Task, columns []string) map[string]any {
	fields := make(map[string]any, len(columns))
	for _, col := range columns {
		switch col {
		case "title":
			fields[col] = t.Title
		case "description":
			fields[col] = t.Description
		case "priority":
			fields[col] = t.Priority
		case "status":
			fields[col] = t.Status
		case "due_date":
			fields[col] = t.DueDate
		case "assigned_to":
			fields[col] = t.AssignedTo
		case "app_id":
			fields[col] = t.AppID
		case "sprint_id":
			fields[col] = t.SprintID
		case "subtasks":
			fields[col] = t.Subtasks
		case "comments":
			fields[col] = t.Comments
		case "updated_at":
			fields[col] = t.UpdatedAt
		}
	}
	return fields
}

func subtaskAt(t *models.Task, subtaskID string) (*models.Subtask, error) {
	i := t.FindSubtask(subtaskID)
	if i < 0 {
		return nil, ErrSubtaskNotFound
	}
	return &t.Subtasks[i], nil
}
