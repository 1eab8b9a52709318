package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sprint-tracker/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Task{}, &models.Sprint{}, &models.User{}, &models.App{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

func setupMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestTaskRepository_RoundTrip(t *testing.T) {
	db := setupSQLite(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	due := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	task := &models.Task{
		ID:        "task-1",
		Title:     "Ship release",
		Priority:  models.PriorityHigh,
		Status:    models.TaskStatusOpen,
		DueDate:   due,
		CreatedBy: 1,
		Subtasks:  models.Subtasks{{ID: "s1", Title: "Tag build"}},
	}
	id, err := repo.Create(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, "task-1", id)

	subtasks := models.Subtasks{
		{ID: "s1", Title: "Tag build", Completed: true},
		{ID: "s2", Title: "Announce", DueDate: &due},
	}
	require.NoError(t, repo.Update(ctx, id, map[string]any{
		"subtasks":   subtasks,
		"updated_at": time.Now(),
	}))

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Ship release", tasks[0].Title)
	require.Len(t, tasks[0].Subtasks, 2)
	assert.True(t, tasks[0].Subtasks[0].Completed)
	require.NotNil(t, tasks[0].Subtasks[1].DueDate)
	assert.True(t, due.Equal(*tasks[0].Subtasks[1].DueDate))

	require.NoError(t, repo.Delete(ctx, id))
	tasks, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskRepository_UpdateMissingTask(t *testing.T) {
	db := setupSQLite(t)
	repo := NewTaskRepository(db)

	err := repo.Update(context.Background(), "missing", map[string]any{"title": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTaskRepository_UpdatePropagatesDriverError(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(`UPDATE "tasks"`).WillReturnError(errors.New("connection reset"))

	err := repo.Update(context.Background(), "task-1", map[string]any{"status": models.TaskStatusCompleted})
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_DeleteUsesID(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(`DELETE FROM "tasks"`).
		WithArgs("task-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "task-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSprintRepository_PartialUpdate(t *testing.T) {
	db := setupSQLite(t)
	repo := NewSprintRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, &models.Sprint{
		ID:        "sp-1",
		Name:      "Sprint 1",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 14),
		Status:    models.SprintStatusPlanning,
	})
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, "sp-1", map[string]any{
		"status":     models.SprintStatusActive,
		"updated_at": time.Now(),
	}))

	sprints, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, sprints, 1)
	assert.Equal(t, models.SprintStatusActive, sprints[0].Status)
	assert.Equal(t, "Sprint 1", sprints[0].Name)
}
