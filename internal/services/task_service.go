package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/sprint-tracker/internal/clock"
	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/repository"
	"github.com/yukikurage/sprint-tracker/internal/store"
)

// TaskService handles task, status, and subtask mutations
type TaskService struct {
	tw     *taskWriter
	cue    CompletionCue
	logger *slog.Logger
}

// TaskServiceOptions carries the optional collaborators of TaskService
type TaskServiceOptions struct {
	Clock  clock.Clock
	Cue    CompletionCue
	Logger *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(st *store.Store, taskRepo repository.TaskRepository, writer *Writer, opts TaskServiceOptions) *TaskService {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Cue == nil {
		opts.Cue = noCue{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &TaskService{
		tw: &taskWriter{
			store:  st,
			repo:   taskRepo,
			writer: writer,
			clock:  opts.Clock,
		},
		cue:    opts.Cue,
		logger: opts.Logger,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.Priority
	Status      models.TaskStatus
	DueDate     *time.Time
	AssignedTo  *uint64
	AppID       *string
	SprintID    *string
	CreatedBy   uint64
}

// UpdateTaskInput represents a partial task update; nil fields are left alone
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *models.Priority
	DueDate       *time.Time
	AssignedTo    *uint64
	ClearAssignee bool
	AppID         *string
	ClearApp      bool
}

// GetTask returns a task snapshot
func (s *TaskService) GetTask(taskID string) (models.Task, error) {
	task, ok := s.tw.store.Task(taskID)
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	return task, nil
}

// ListTasks returns every task in creation order
func (s *TaskService) ListTasks() []models.Task {
	return s.tw.store.Tasks()
}

// CreateTask validates input, adds the task locally and queues the insert
func (s *TaskService) CreateTask(input CreateTaskInput) (Mutation[models.Task], error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Mutation[models.Task]{}, ErrTitleRequired
	}
	if input.DueDate == nil || input.DueDate.IsZero() {
		return Mutation[models.Task]{}, ErrDueDateRequired
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return Mutation[models.Task]{}, ErrInvalidPriority
	}
	if input.Status == "" {
		input.Status = models.TaskStatusOpen
	}
	if !input.Status.Valid() {
		return Mutation[models.Task]{}, ErrInvalidStatus
	}
	if input.SprintID != nil {
		if _, ok := s.tw.store.Sprint(*input.SprintID); !ok {
			return Mutation[models.Task]{}, ErrSprintNotFound
		}
	}

	s.tw.mu.Lock()
	defer s.tw.mu.Unlock()

	now := s.tw.now()
	task := models.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		DueDate:     *input.DueDate,
		AssignedTo:  input.AssignedTo,
		AppID:       input.AppID,
		SprintID:    input.SprintID,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
		Subtasks:    models.Subtasks{},
		Comments:    models.Comments{},
	}
	s.tw.store.PutTask(task)

	record := task.Clone()
	pending := s.tw.writer.Submit(fmt.Sprintf("create task %s", task.ID), func(ctx context.Context) error {
		_, err := s.tw.repo.Create(ctx, &record)
		return err
	})
	return Mutation[models.Task]{Value: task.Clone(), Persist: pending}, nil
}

// UpdateTask applies a partial update and persists only the changed columns
func (s *TaskService) UpdateTask(taskID string, input UpdateTaskInput) (Mutation[models.Task], error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return Mutation[models.Task]{}, ErrTitleRequired
	}
	if input.DueDate != nil && input.DueDate.IsZero() {
		return Mutation[models.Task]{}, ErrDueDateRequired
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return Mutation[models.Task]{}, ErrInvalidPriority
	}

	var columns []string
	if input.Title != nil {
		columns = append(columns, "title")
	}
	if input.Description != nil {
		columns = append(columns, "description")
	}
	if input.Priority != nil {
		columns = append(columns, "priority")
	}
	if input.DueDate != nil {
		columns = append(columns, "due_date")
	}
	if input.ClearAssignee || input.AssignedTo != nil {
		columns = append(columns, "assigned_to")
	}
	if input.ClearApp || input.AppID != nil {
		columns = append(columns, "app_id")
	}

	return s.tw.apply(taskID, columns, func(t *models.Task) error {
		if input.Title != nil {
			t.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			t.Description = *input.Description
		}
		if input.Priority != nil {
			t.Priority = *input.Priority
		}
		if input.DueDate != nil {
			t.DueDate = *input.DueDate
		}
		if input.ClearAssignee {
			t.AssignedTo = nil
		} else if input.AssignedTo != nil {
			id := *input.AssignedTo
			t.AssignedTo = &id
		}
		if input.ClearApp {
			t.AppID = nil
		} else if input.AppID != nil {
			id := *input.AppID
			t.AppID = &id
		}
		return nil
	})
}

// DeleteTask removes a task with its subtasks and comments
func (s *TaskService) DeleteTask(taskID string) (Mutation[models.Task], error) {
	s.tw.mu.Lock()
	defer s.tw.mu.Unlock()

	removed, ok := s.tw.store.DeleteTask(taskID)
	if !ok {
		return Mutation[models.Task]{}, ErrTaskNotFound
	}
	pending := s.tw.writer.Submit(fmt.Sprintf("delete task %s", taskID), func(ctx context.Context) error {
		return s.tw.repo.Delete(ctx, taskID)
	})
	return Mutation[models.Task]{Value: removed, Persist: pending}, nil
}
