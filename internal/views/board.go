package views

import "github.com/yukikurage/sprint-tracker/internal/models"

// Board partitions tasks by status. Every status has a key, possibly with
// an empty bucket. A non-empty sprintID keeps only tasks assigned to it.
func Board(tasks []models.Task, sprintID string) map[models.TaskStatus][]models.Task {
	board := make(map[models.TaskStatus][]models.Task, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		board[status] = []models.Task{}
	}

	for _, t := range tasks {
		if sprintID != "" && (t.SprintID == nil || *t.SprintID != sprintID) {
			continue
		}
		if _, ok := board[t.Status]; !ok {
			continue
		}
		board[t.Status] = append(board[t.Status], t.Clone())
	}
	return board
}
