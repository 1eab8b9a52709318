package services

import (
	"context"
	"errors"
	"sync"

	"github.com/yukikurage/sprint-tracker/internal/models"
	"gorm.io/gorm"
)

var errDiskFull = errors.New("disk full")

type fakeTaskRepo struct {
	mu      sync.Mutex
	tasks   map[string]models.Task
	calls   []string
	failing bool
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]models.Task)}
}

func (r *fakeTaskRepo) List(ctx context.Context) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *models.Task) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "create "+task.ID)
	if r.failing {
		return "", errDiskFull
	}
	r.tasks[task.ID] = task.Clone()
	return task.ID, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "update "+id)
	if r.failing {
		return errDiskFull
	}
	t, ok := r.tasks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["title"].(string); ok {
		t.Title = v
	}
	if v, ok := fields["status"].(models.TaskStatus); ok {
		t.Status = v
	}
	if v, ok := fields["subtasks"].(models.Subtasks); ok {
		t.Subtasks = v.Clone()
	}
	if v, ok := fields["comments"].(models.Comments); ok {
		t.Comments = v.Clone()
	}
	r.tasks[id] = t
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "delete "+id)
	if r.failing {
		return errDiskFull
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) setFailing(failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing = failing
}

func (r *fakeTaskRepo) stored(id string) (models.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	return t, ok
}

func (r *fakeTaskRepo) history() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeSprintRepo struct {
	mu      sync.Mutex
	sprints map[string]models.Sprint
}

func newFakeSprintRepo() *fakeSprintRepo {
	return &fakeSprintRepo{sprints: make(map[string]models.Sprint)}
}

func (r *fakeSprintRepo) List(ctx context.Context) ([]models.Sprint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Sprint, 0, len(r.sprints))
	for _, sp := range r.sprints {
		out = append(out, sp)
	}
	return out, nil
}

func (r *fakeSprintRepo) Create(ctx context.Context, sprint *models.Sprint) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sprints[sprint.ID] = *sprint
	return sprint.ID, nil
}

func (r *fakeSprintRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.sprints[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["status"].(models.SprintStatus); ok {
		sp.Status = v
	}
	if v, ok := fields["name"].(string); ok {
		sp.Name = v
	}
	r.sprints[id] = sp
	return nil
}

func (r *fakeSprintRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sprints, id)
	return nil
}

func (r *fakeSprintRepo) stored(id string) (models.Sprint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.sprints[id]
	return sp, ok
}

type countingCue struct {
	mu    sync.Mutex
	plays int
}

func (c *countingCue) PlayCompletionCue() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays++
}

func (c *countingCue) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plays
}

type staticProfiles map[uint64]string

func (p staticProfiles) Profile(userID uint64) (string, string) {
	return p[userID], "https://avatars.example/" + p[userID]
}
