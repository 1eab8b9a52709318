package repository

import (
	"context"

	"github.com/yukikurage/sprint-tracker/internal/models"
)

// TaskRepository defines the interface for task document storage
type TaskRepository interface {
	// List returns every stored task
	List(ctx context.Context) ([]models.Task, error)

	// Create stores a new task and returns its ID
	Create(ctx context.Context, task *models.Task) (string, error)

	// Update writes only the given columns of a task
	Update(ctx context.Context, id string, fields map[string]any) error

	// Delete removes a task together with its embedded subtasks and comments
	Delete(ctx context.Context, id string) error
}

// SprintRepository defines the interface for sprint storage
type SprintRepository interface {
	// List returns every stored sprint
	List(ctx context.Context) ([]models.Sprint, error)

	// Create stores a new sprint and returns its ID
	Create(ctx context.Context, sprint *models.Sprint) (string, error)

	// Update writes only the given columns of a sprint
	Update(ctx context.Context, id string, fields map[string]any) error

	// Delete removes a sprint; tasks keep their now dangling reference
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// List returns all users
	List(ctx context.Context) ([]models.User, error)

	// Update writes the given columns of one user
	Update(ctx context.Context, id uint64, fields map[string]any) error
}

// AppRepository defines the interface for app context tags
type AppRepository interface {
	Create(ctx context.Context, app *models.App) error
	FindByID(ctx context.Context, id string) (*models.App, error)
	List(ctx context.Context) ([]models.App, error)
}
