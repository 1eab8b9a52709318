package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sprint-tracker/internal/models"
)

type fakeTaskRepo struct {
	tasks []models.Task
	err   error
}

func (r *fakeTaskRepo) List(context.Context) ([]models.Task, error) { return r.tasks, r.err }
func (r *fakeTaskRepo) Create(_ context.Context, t *models.Task) (string, error) {
	return t.ID, nil
}
func (r *fakeTaskRepo) Update(context.Context, string, map[string]any) error { return nil }
func (r *fakeTaskRepo) Delete(context.Context, string) error                 { return nil }

type fakeSprintRepo struct {
	sprints []models.Sprint
	updates map[string]map[string]any
}

func (r *fakeSprintRepo) List(context.Context) ([]models.Sprint, error) { return r.sprints, nil }
func (r *fakeSprintRepo) Create(_ context.Context, sp *models.Sprint) (string, error) {
	return sp.ID, nil
}
func (r *fakeSprintRepo) Update(_ context.Context, id string, fields map[string]any) error {
	if r.updates == nil {
		r.updates = map[string]map[string]any{}
	}
	r.updates[id] = fields
	return nil
}
func (r *fakeSprintRepo) Delete(context.Context, string) error { return nil }

func TestStore_LoadKeepsOrderAndActiveSprint(t *testing.T) {
	s := New()
	err := s.Load(context.Background(),
		&fakeTaskRepo{tasks: []models.Task{{ID: "b"}, {ID: "a"}, {ID: "c"}}},
		&fakeSprintRepo{sprints: []models.Sprint{
			{ID: "s1", Status: models.SprintStatusCompleted},
			{ID: "s2", Status: models.SprintStatusActive},
		}},
	)
	require.NoError(t, err)

	ids := []string{}
	for _, task := range s.Tasks() {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
	assert.Equal(t, "s2", s.ActiveSprintID())
}

func TestStore_LoadCompletesExtraActiveSprints(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeSprintRepo{sprints: []models.Sprint{
		{ID: "s1", Status: models.SprintStatusActive, UpdatedAt: base},
		{ID: "s2", Status: models.SprintStatusActive, UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "s3", Status: models.SprintStatusActive, UpdatedAt: base.Add(time.Hour)},
		{ID: "s4", Status: models.SprintStatusPlanning, UpdatedAt: base.Add(3 * time.Hour)},
	}}

	s := New()
	require.NoError(t, s.Load(context.Background(), &fakeTaskRepo{}, repo))

	assert.Equal(t, "s2", s.ActiveSprintID())
	active := 0
	for _, sp := range s.Sprints() {
		if sp.Status == models.SprintStatusActive {
			active++
		}
	}
	assert.Equal(t, 1, active)

	for _, id := range []string{"s1", "s3"} {
		sp, ok := s.Sprint(id)
		require.True(t, ok)
		assert.Equal(t, models.SprintStatusCompleted, sp.Status)
		assert.Equal(t, models.SprintStatusCompleted, repo.updates[id]["status"])
	}
	assert.NotContains(t, repo.updates, "s2")
	assert.NotContains(t, repo.updates, "s4")
}

func TestStore_LoadError(t *testing.T) {
	s := New()
	err := s.Load(context.Background(), &fakeTaskRepo{err: errors.New("down")}, &fakeSprintRepo{})
	assert.ErrorContains(t, err, "down")
}

func TestStore_SnapshotsAreIsolated(t *testing.T) {
	s := New()
	s.PutTask(models.Task{ID: "t1", Title: "one", Subtasks: models.Subtasks{{ID: "x"}}})

	snap := s.Tasks()
	snap[0].Title = "changed"
	snap[0].Subtasks[0].Title = "changed"

	task, ok := s.Task("t1")
	require.True(t, ok)
	assert.Equal(t, "one", task.Title)
	assert.Equal(t, "", task.Subtasks[0].Title)
}

func TestStore_UpdateTaskErrorLeavesStateUntouched(t *testing.T) {
	s := New()
	s.PutTask(models.Task{ID: "t1", Title: "one"})

	_, found, err := s.UpdateTask("t1", func(task *models.Task) error {
		task.Title = "half-applied"
		return errors.New("rejected")
	})
	assert.True(t, found)
	assert.Error(t, err)

	task, _ := s.Task("t1")
	assert.Equal(t, "one", task.Title)

	_, found, err = s.UpdateTask("missing", func(*models.Task) error { return nil })
	assert.False(t, found)
	assert.NoError(t, err)
}

func TestStore_DeleteTaskReindexes(t *testing.T) {
	s := New()
	for _, id := range []string{"a", "b", "c"} {
		s.PutTask(models.Task{ID: id, DueDate: time.Now()})
	}

	_, ok := s.DeleteTask("a")
	require.True(t, ok)
	_, ok = s.DeleteTask("a")
	assert.False(t, ok)

	task, ok := s.Task("c")
	require.True(t, ok)
	assert.Equal(t, "c", task.ID)
	assert.Len(t, s.Tasks(), 2)
}

func TestStore_SprintTxCommitsAtomically(t *testing.T) {
	s := New()
	s.PutSprint(models.Sprint{ID: "s1", Status: models.SprintStatusActive})
	s.PutSprint(models.Sprint{ID: "s2", Status: models.SprintStatusPlanning})

	err := s.SprintTx(func(tx *SprintTx) error {
		sp, _ := tx.Get("s1")
		sp.Status = models.SprintStatusCompleted
		tx.Set(sp)
		tx.SetActive("")
		return errors.New("abort")
	})
	require.Error(t, err)
	sp, _ := s.Sprint("s1")
	assert.Equal(t, models.SprintStatusActive, sp.Status)

	err = s.SprintTx(func(tx *SprintTx) error {
		assert.Equal(t, []string{"s1"}, tx.ActiveIDs())
		sp, _ := tx.Get("s2")
		sp.Status = models.SprintStatusActive
		tx.Set(sp)
		tx.SetActive("s2")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "s2", s.ActiveSprintID())
}

func TestStore_DeleteActiveSprintClearsReference(t *testing.T) {
	s := New()
	s.PutSprint(models.Sprint{ID: "s1"})
	s.PutSprint(models.Sprint{ID: "s2"})
	require.NoError(t, s.SprintTx(func(tx *SprintTx) error {
		tx.SetActive("s1")
		return nil
	}))

	_, ok := s.DeleteSprint("s1")
	require.True(t, ok)
	assert.Equal(t, "", s.ActiveSprintID())

	sp, ok := s.Sprint("s2")
	require.True(t, ok)
	assert.Equal(t, "s2", sp.ID)
}
