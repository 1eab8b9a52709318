package services

import (
	"log/slog"

	"github.com/yukikurage/sprint-tracker/internal/models"
)

// TransitionStatus moves a task to status. Any known status may follow any
// other; only status and updated_at change. The completion cue plays only
// when the task enters completed.
func (s *TaskService) TransitionStatus(taskID string, status models.TaskStatus) (Mutation[models.Task], error) {
	if !status.Valid() {
		return Mutation[models.Task]{}, ErrInvalidStatus
	}

	var enteredCompleted bool
	m, err := s.tw.apply(taskID, []string{"status"}, func(t *models.Task) error {
		enteredCompleted = status == models.TaskStatusCompleted && t.Status != models.TaskStatusCompleted
		t.Status = status
		return nil
	})
	if err != nil {
		return m, err
	}

	s.logger.Debug("Task status changed", slog.String("task_id", taskID), slog.String("status", string(status)))
	if enteredCompleted {
		s.cue.PlayCompletionCue()
	}
	return m, nil
}
