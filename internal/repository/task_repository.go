package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/sprint-tracker/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// List returns tasks in creation order
func (r *GormTaskRepository) List(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) (string, error) {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return "", err
	}
	return task.ID, nil
}

// Update applies a partial update, e.g. {"subtasks", "updated_at"}
func (r *GormTaskRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete hard deletes a task; subtasks and comments are part of the row
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id).Error
}
