package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/sprint-tracker/internal/models"
)

// AddSubtaskInput represents input for adding a subtask
type AddSubtaskInput struct {
	Title   string
	DueDate *time.Time
}

// AddSubtask appends a subtask to the end of the task's checklist
func (s *TaskService) AddSubtask(taskID string, input AddSubtaskInput) (Mutation[models.Task], error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Mutation[models.Task]{}, ErrTitleRequired
	}

	now := s.tw.now()
	return s.tw.apply(taskID, []string{"subtasks"}, func(t *models.Task) error {
		subtask := models.Subtask{
			ID:        uuid.NewString(),
			Title:     title,
			Comments:  models.Comments{},
			CreatedAt: now,
		}
		if input.DueDate != nil && !input.DueDate.IsZero() {
			due := *input.DueDate
			subtask.DueDate = &due
		}
		t.Subtasks = append(t.Subtasks, subtask)
		return nil
	})
}

// RenameSubtask changes a subtask title
func (s *TaskService) RenameSubtask(taskID, subtaskID, title string) (Mutation[models.Task], error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Mutation[models.Task]{}, ErrTitleRequired
	}
	return s.tw.apply(taskID, []string{"subtasks"}, func(t *models.Task) error {
		st, err := subtaskAt(t, subtaskID)
		if err != nil {
			return err
		}
		st.Title = title
		return nil
	})
}

// DeleteSubtask removes a subtask and its comments
func (s *TaskService) DeleteSubtask(taskID, subtaskID string) (Mutation[models.Task], error) {
	return s.tw.apply(taskID, []string{"subtasks"}, func(t *models.Task) error {
		i := t.FindSubtask(subtaskID)
		if i < 0 {
			return ErrSubtaskNotFound
		}
		t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
		return nil
	})
}

// ToggleSubtask flips a subtask's completed flag. The completion cue plays
// when it becomes completed, whatever the parent status.
func (s *TaskService) ToggleSubtask(taskID, subtaskID string) (Mutation[models.Task], error) {
	var completed bool
	m, err := s.tw.apply(taskID, []string{"subtasks"}, func(t *models.Task) error {
		st, err := subtaskAt(t, subtaskID)
		if err != nil {
			return err
		}
		st.Completed = !st.Completed
		completed = st.Completed
		return nil
	})
	if err != nil {
		return m, err
	}
	if completed {
		s.cue.PlayCompletionCue()
	}
	return m, nil
}

// SetSubtaskDueDate sets or, with nil, clears a subtask due date
func (s *TaskService) SetSubtaskDueDate(taskID, subtaskID string, due *time.Time) (Mutation[models.Task], error) {
	return s.tw.apply(taskID, []string{"subtasks"}, func(t *models.Task) error {
		st, err := subtaskAt(t, subtaskID)
		if err != nil {
			return err
		}
		if due == nil || due.IsZero() {
			st.DueDate = nil
			return nil
		}
		d := *due
		st.DueDate = &d
		return nil
	})
}
