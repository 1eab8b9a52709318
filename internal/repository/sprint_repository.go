package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/sprint-tracker/internal/models"
	"gorm.io/gorm"
)

// GormSprintRepository is a GORM implementation of SprintRepository
type GormSprintRepository struct {
	db *gorm.DB
}

// NewSprintRepository creates a new SprintRepository
func NewSprintRepository(db *gorm.DB) SprintRepository {
	return &GormSprintRepository{db: db}
}

func (r *GormSprintRepository) List(ctx context.Context) ([]models.Sprint, error) {
	var sprints []models.Sprint
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&sprints).Error; err != nil {
		return nil, err
	}
	return sprints, nil
}

func (r *GormSprintRepository) Create(ctx context.Context, sprint *models.Sprint) (string, error) {
	if err := r.db.WithContext(ctx).Create(sprint).Error; err != nil {
		return "", err
	}
	return sprint.ID, nil
}

func (r *GormSprintRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(&models.Sprint{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("sprint %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *GormSprintRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Sprint{}, "id = ?", id).Error
}
