package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/repository"
	"github.com/yukikurage/sprint-tracker/internal/store"
)

// SprintService manages sprints and the single active sprint
type SprintService struct {
	mu     sync.Mutex
	store  *store.Store
	repo   repository.SprintRepository
	tasks  *TaskService
	writer *Writer
	logger *slog.Logger
}

// NewSprintService creates a new SprintService. Task assignment goes through
// the task service's writer so task writes stay ordered.
func NewSprintService(st *store.Store, sprintRepo repository.SprintRepository, tasks *TaskService, writer *Writer) *SprintService {
	return &SprintService{
		store:  st,
		repo:   sprintRepo,
		tasks:  tasks,
		writer: writer,
		logger: tasks.logger,
	}
}

// CreateSprintInput represents input for creating a sprint
type CreateSprintInput struct {
	Name      string
	Goal      string
	StartDate time.Time
	EndDate   time.Time
	CreatedBy uint64
}

// UpdateSprintInput represents a partial sprint update
type UpdateSprintInput struct {
	Name      *string
	Goal      *string
	StartDate *time.Time
	EndDate   *time.Time
}

// ListSprints returns every sprint in creation order
func (s *SprintService) ListSprints() []models.Sprint {
	return s.store.Sprints()
}

// GetSprint returns one sprint
func (s *SprintService) GetSprint(id string) (models.Sprint, error) {
	sp, ok := s.store.Sprint(id)
	if !ok {
		return models.Sprint{}, ErrSprintNotFound
	}
	return sp, nil
}

// ActiveSprint returns the active sprint, if any
func (s *SprintService) ActiveSprint() (models.Sprint, bool) {
	id := s.store.ActiveSprintID()
	if id == "" {
		return models.Sprint{}, false
	}
	return s.store.Sprint(id)
}

// CreateSprint adds a sprint in planning status
func (s *SprintService) CreateSprint(input CreateSprintInput) (Mutation[models.Sprint], error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Mutation[models.Sprint]{}, ErrSprintNameRequired
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() || input.EndDate.Before(input.StartDate) {
		return Mutation[models.Sprint]{}, ErrInvalidSprintRange
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.tasks.tw.now()
	sprint := models.Sprint{
		ID:        uuid.NewString(),
		Name:      name,
		Goal:      input.Goal,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Status:    models.SprintStatusPlanning,
		CreatedBy: input.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.store.PutSprint(sprint)

	record := sprint
	pending := s.writer.Submit(fmt.Sprintf("create sprint %s", sprint.ID), func(ctx context.Context) error {
		_, err := s.repo.Create(ctx, &record)
		return err
	})
	return Mutation[models.Sprint]{Value: sprint, Persist: pending}, nil
}

// UpdateSprint changes name, goal or dates
func (s *SprintService) UpdateSprint(id string, input UpdateSprintInput) (Mutation[models.Sprint], error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return Mutation[models.Sprint]{}, ErrSprintNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated models.Sprint
	fields := map[string]any{}
	err := s.store.SprintTx(func(tx *store.SprintTx) error {
		sp, ok := tx.Get(id)
		if !ok {
			return ErrSprintNotFound
		}
		if input.Name != nil {
			sp.Name = strings.TrimSpace(*input.Name)
			fields["name"] = sp.Name
		}
		if input.Goal != nil {
			sp.Goal = *input.Goal
			fields["goal"] = sp.Goal
		}
		if input.StartDate != nil {
			sp.StartDate = *input.StartDate
			fields["start_date"] = sp.StartDate
		}
		if input.EndDate != nil {
			sp.EndDate = *input.EndDate
			fields["end_date"] = sp.EndDate
		}
		if sp.EndDate.Before(sp.StartDate) {
			return ErrInvalidSprintRange
		}
		sp.UpdatedAt = s.tasks.tw.now()
		fields["updated_at"] = sp.UpdatedAt
		tx.Set(sp)
		updated = sp
		return nil
	})
	if err != nil {
		return Mutation[models.Sprint]{}, err
	}

	pending := s.writer.Submit(fmt.Sprintf("update sprint %s", id), func(ctx context.Context) error {
		return s.repo.Update(ctx, id, fields)
	})
	return Mutation[models.Sprint]{Value: updated, Persist: pending}, nil
}

// SetSprintStatus changes a sprint's status. Activating a sprint completes
// whichever sprint was active before, so exactly one stays active.
func (s *SprintService) SetSprintStatus(id string, status models.SprintStatus) (Mutation[models.Sprint], error) {
	if !status.Valid() {
		return Mutation[models.Sprint]{}, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.tasks.tw.now()
	var changed []models.Sprint
	var target models.Sprint
	err := s.store.SprintTx(func(tx *store.SprintTx) error {
		sp, ok := tx.Get(id)
		if !ok {
			return ErrSprintNotFound
		}

		if status == models.SprintStatusActive {
			for _, otherID := range tx.ActiveIDs() {
				if otherID == id {
					continue
				}
				other, _ := tx.Get(otherID)
				other.Status = models.SprintStatusCompleted
				other.UpdatedAt = now
				tx.Set(other)
				changed = append(changed, other)
			}
			tx.SetActive(id)
		} else if tx.Active() == id {
			tx.SetActive("")
		}

		sp.Status = status
		sp.UpdatedAt = now
		tx.Set(sp)
		target = sp
		changed = append(changed, sp)
		return nil
	})
	if err != nil {
		return Mutation[models.Sprint]{}, err
	}

	for _, sp := range changed {
		s.logger.Info("Sprint status changed", slog.String("sprint_id", sp.ID), slog.String("status", string(sp.Status)))
	}

	pending := s.writer.Submit(fmt.Sprintf("set sprint %s status", id), func(ctx context.Context) error {
		for _, sp := range changed {
			if err := s.repo.Update(ctx, sp.ID, map[string]any{
				"status":     sp.Status,
				"updated_at": sp.UpdatedAt,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return Mutation[models.Sprint]{Value: target, Persist: pending}, nil
}

// DeleteSprint removes a sprint. Tasks that referenced it are left alone
// and read as unassigned from then on.
func (s *SprintService) DeleteSprint(id string) (Mutation[models.Sprint], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, ok := s.store.DeleteSprint(id)
	if !ok {
		return Mutation[models.Sprint]{}, ErrSprintNotFound
	}
	pending := s.writer.Submit(fmt.Sprintf("delete sprint %s", id), func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
	return Mutation[models.Sprint]{Value: removed, Persist: pending}, nil
}

// AssignTaskToSprint sets the task's sprint; nil removes the assignment
func (s *SprintService) AssignTaskToSprint(taskID string, sprintID *string) (Mutation[models.Task], error) {
	if err := s.checkSprint(sprintID); err != nil {
		return Mutation[models.Task]{}, err
	}
	return s.tasks.tw.apply(taskID, []string{"sprint_id"}, func(t *models.Task) error {
		t.SprintID = copyID(sprintID)
		return nil
	})
}

// AssignSubtaskToSprint sets a subtask's sprint independently of its parent
func (s *SprintService) AssignSubtaskToSprint(taskID, subtaskID string, sprintID *string) (Mutation[models.Task], error) {
	if err := s.checkSprint(sprintID); err != nil {
		return Mutation[models.Task]{}, err
	}
	return s.tasks.tw.apply(taskID, []string{"subtasks"}, func(t *models.Task) error {
		st, err := subtaskAt(t, subtaskID)
		if err != nil {
			return err
		}
		st.SprintID = copyID(sprintID)
		return nil
	})
}

// SprintOf resolves a sprint reference; dangling references read as none.
func (s *SprintService) SprintOf(sprintID *string) (models.Sprint, bool) {
	if sprintID == nil {
		return models.Sprint{}, false
	}
	return s.store.Sprint(*sprintID)
}

func (s *SprintService) checkSprint(sprintID *string) error {
	if sprintID == nil {
		return nil
	}
	if _, ok := s.store.Sprint(*sprintID); !ok {
		return ErrSprintNotFound
	}
	return nil
}

func copyID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	v := *id
	return &v
}
