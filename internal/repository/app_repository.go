package repository

import (
	"context"

	"github.com/yukikurage/sprint-tracker/internal/models"
	"gorm.io/gorm"
)

// GormAppRepository is a GORM implementation of AppRepository
type GormAppRepository struct {
	db *gorm.DB
}

// NewAppRepository creates a new AppRepository
func NewAppRepository(db *gorm.DB) AppRepository {
	return &GormAppRepository{db: db}
}

func (r *GormAppRepository) Create(ctx context.Context, app *models.App) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *GormAppRepository) FindByID(ctx context.Context, id string) (*models.App, error) {
	var app models.App
	if err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *GormAppRepository) List(ctx context.Context) ([]models.App, error) {
	var apps []models.App
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}
