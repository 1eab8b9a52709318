// Package store holds the canonical in-memory task and sprint collections.
// Every view and the alarm monitor read deep-copied snapshots; only the
// services package writes.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/repository"
)

// Store keeps tasks and sprints in insertion order.
type Store struct {
	mu sync.RWMutex

	tasks     []*models.Task
	taskIndex map[string]int

	sprints      []*models.Sprint
	sprintIndex  map[string]int
	activeSprint string
}

// New returns an empty store.
func New() *Store {
	return &Store{
		taskIndex:   make(map[string]int),
		sprintIndex: make(map[string]int),
	}
}

// Load replaces the store contents with what the repositories hold. If
// more than one stored sprint is active, the most recently updated one
// keeps the flag and the others are completed and saved back.
func (s *Store) Load(ctx context.Context, tasks repository.TaskRepository, sprints repository.SprintRepository) error {
	storedTasks, err := tasks.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	storedSprints, err := sprints.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sprints: %w", err)
	}

	active := -1
	var demoted []int
	for i := range storedSprints {
		if storedSprints[i].Status != models.SprintStatusActive {
			continue
		}
		if active >= 0 && storedSprints[i].UpdatedAt.Before(storedSprints[active].UpdatedAt) {
			demoted = append(demoted, i)
			continue
		}
		if active >= 0 {
			demoted = append(demoted, active)
		}
		active = i
	}
	for _, i := range demoted {
		sp := &storedSprints[i]
		slog.Warn("Completing extra active sprint",
			slog.String("sprint_id", sp.ID),
			slog.String("active_sprint_id", storedSprints[active].ID))
		sp.Status = models.SprintStatusCompleted
		if err := sprints.Update(ctx, sp.ID, map[string]any{"status": sp.Status}); err != nil {
			return fmt.Errorf("failed to complete sprint %s: %w", sp.ID, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = nil
	s.taskIndex = make(map[string]int, len(storedTasks))
	for i := range storedTasks {
		s.insertTask(storedTasks[i])
	}

	s.sprints = nil
	s.sprintIndex = make(map[string]int, len(storedSprints))
	s.activeSprint = ""
	for i := range storedSprints {
		s.insertSprint(storedSprints[i])
	}
	if active >= 0 {
		s.activeSprint = storedSprints[active].ID
	}
	return nil
}

// Tasks returns a deep copy of every task in insertion order.
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Task returns a copy of one task.
func (s *Store) Task(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.taskIndex[id]
	if !ok {
		return models.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// UpdateTask runs fn against the live task under the write lock. If fn
// returns an error nothing is changed. The returned task is a copy of the
// state after fn.
func (s *Store) UpdateTask(id string, fn func(t *models.Task) error) (models.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.taskIndex[id]
	if !ok {
		return models.Task{}, false, nil
	}
	working := s.tasks[i].Clone()
	if err := fn(&working); err != nil {
		return models.Task{}, true, err
	}
	s.tasks[i] = &working
	return working.Clone(), true, nil
}

// PutTask appends a new task or replaces an existing one in place.
func (s *Store) PutTask(t models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.taskIndex[t.ID]; ok {
		c := t.Clone()
		s.tasks[i] = &c
		return
	}
	s.insertTask(t)
}

// DeleteTask removes a task and everything embedded in it.
func (s *Store) DeleteTask(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.taskIndex[id]
	if !ok {
		return models.Task{}, false
	}
	removed := *s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.reindexTasks()
	return removed, true
}

// Sprints returns copies of every sprint in insertion order.
func (s *Store) Sprints() []models.Sprint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Sprint, len(s.sprints))
	for i, sp := range s.sprints {
		out[i] = *sp
	}
	return out
}

// Sprint returns a copy of one sprint.
func (s *Store) Sprint(id string) (models.Sprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.sprintIndex[id]
	if !ok {
		return models.Sprint{}, false
	}
	return *s.sprints[i], true
}

// ActiveSprintID returns the active sprint reference, or "".
func (s *Store) ActiveSprintID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeSprint
}

// PutSprint appends or replaces a sprint.
func (s *Store) PutSprint(sp models.Sprint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.sprintIndex[sp.ID]; ok {
		c := sp
		s.sprints[i] = &c
		return
	}
	s.insertSprint(sp)
}

// SprintTx gives fn exclusive access to all sprints and the active
// reference so multi-sprint changes are applied atomically.
func (s *Store) SprintTx(fn func(tx *SprintTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &SprintTx{store: s, active: s.activeSprint, pending: make(map[string]models.Sprint)}
	if err := fn(tx); err != nil {
		return err
	}
	for id, sp := range tx.pending {
		if i, ok := s.sprintIndex[id]; ok {
			c := sp
			s.sprints[i] = &c
		}
	}
	s.activeSprint = tx.active
	return nil
}

// DeleteSprint removes a sprint and clears the active reference if it
// pointed at it. Tasks keep their reference.
func (s *Store) DeleteSprint(id string) (models.Sprint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.sprintIndex[id]
	if !ok {
		return models.Sprint{}, false
	}
	removed := *s.sprints[i]
	s.sprints = append(s.sprints[:i], s.sprints[i+1:]...)
	delete(s.sprintIndex, id)
	for j := i; j < len(s.sprints); j++ {
		s.sprintIndex[s.sprints[j].ID] = j
	}
	if s.activeSprint == id {
		s.activeSprint = ""
	}
	return removed, true
}

func (s *Store) insertTask(t models.Task) {
	c := t.Clone()
	s.taskIndex[c.ID] = len(s.tasks)
	s.tasks = append(s.tasks, &c)
}

func (s *Store) insertSprint(sp models.Sprint) {
	c := sp
	s.sprintIndex[c.ID] = len(s.sprints)
	s.sprints = append(s.sprints, &c)
}

func (s *Store) reindexTasks() {
	s.taskIndex = make(map[string]int, len(s.tasks))
	for i, t := range s.tasks {
		s.taskIndex[t.ID] = i
	}
}

// SprintTx is a staged view over the sprint collection.
type SprintTx struct {
	store   *Store
	active  string
	pending map[string]models.Sprint
}

// Get returns the staged or stored sprint.
func (tx *SprintTx) Get(id string) (models.Sprint, bool) {
	if sp, ok := tx.pending[id]; ok {
		return sp, true
	}
	i, ok := tx.store.sprintIndex[id]
	if !ok {
		return models.Sprint{}, false
	}
	return *tx.store.sprints[i], true
}

// Set stages a change to an existing sprint.
func (tx *SprintTx) Set(sp models.Sprint) {
	tx.pending[sp.ID] = sp
}

// Active returns the staged active sprint reference.
func (tx *SprintTx) Active() string {
	return tx.active
}

// SetActive stages the active sprint reference; "" clears it.
func (tx *SprintTx) SetActive(id string) {
	tx.active = id
}

// ActiveIDs returns every sprint whose staged status is active.
func (tx *SprintTx) ActiveIDs() []string {
	var ids []string
	for _, sp := range tx.store.sprints {
		current, _ := tx.Get(sp.ID)
		if current.Status == models.SprintStatusActive {
			ids = append(ids, sp.ID)
		}
	}
	return ids
}
