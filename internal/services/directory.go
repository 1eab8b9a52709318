package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/repository"
)

// DirectoryService resolves user and app ids to display information. It is
// only used to enrich what the console shows, never to authorize.
type DirectoryService struct {
	userRepo repository.UserRepository
	appRepo  repository.AppRepository
	logger   *slog.Logger

	mu    sync.RWMutex
	users map[uint64]models.User
	apps  map[string]models.App
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(userRepo repository.UserRepository, appRepo repository.AppRepository, logger *slog.Logger) *DirectoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectoryService{
		userRepo: userRepo,
		appRepo:  appRepo,
		logger:   logger,
		users:    make(map[uint64]models.User),
		apps:     make(map[string]models.App),
	}
}

// Refresh reloads every user and app into the cache
func (d *DirectoryService) Refresh(ctx context.Context) error {
	users, err := d.userRepo.List(ctx)
	if err != nil {
		return err
	}
	apps, err := d.appRepo.List(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = make(map[uint64]models.User, len(users))
	for _, u := range users {
		d.users[u.ID] = u
	}
	d.apps = make(map[string]models.App, len(apps))
	for _, a := range apps {
		d.apps[a.ID] = a
	}
	return nil
}

// Remember caches a user that was just created or edited
func (d *DirectoryService) Remember(user models.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = user
}

// RememberApp caches an app that was just created
func (d *DirectoryService) RememberApp(app models.App) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.apps[app.ID] = app
}

// CreateApp registers an app context tag
func (d *DirectoryService) CreateApp(ctx context.Context, id, name string) (*models.App, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return nil, ErrAppFieldsRequired
	}
	if _, err := d.appRepo.FindByID(ctx, id); err == nil {
		return nil, ErrAppExists
	}

	app := &models.App{ID: id, Name: name}
	if err := d.appRepo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}
	d.RememberApp(*app)
	return app, nil
}

// ListApps returns every known app
func (d *DirectoryService) ListApps(ctx context.Context) ([]models.App, error) {
	return d.appRepo.List(ctx)
}

// ListUsers returns every account
func (d *DirectoryService) ListUsers(ctx context.Context) ([]models.User, error) {
	return d.userRepo.List(ctx)
}

// Profile returns the display name and avatar URL of a user
func (d *DirectoryService) Profile(userID uint64) (string, string) {
	user, ok := d.user(userID)
	if !ok {
		return "user #" + strconv.FormatUint(userID, 10), ""
	}
	return user.Name(), user.AvatarURL
}

// UserName returns the display name of a user, or "" when unknown
func (d *DirectoryService) UserName(userID uint64) string {
	user, ok := d.user(userID)
	if !ok {
		return ""
	}
	return user.Name()
}

// AppName returns the display name of an app, or "" when unknown
func (d *DirectoryService) AppName(appID string) string {
	d.mu.RLock()
	app, ok := d.apps[appID]
	d.mu.RUnlock()
	if ok {
		return app.Name
	}

	found, err := d.appRepo.FindByID(context.Background(), appID)
	if err != nil {
		return ""
	}
	d.RememberApp(*found)
	return found.Name
}

func (d *DirectoryService) user(userID uint64) (models.User, bool) {
	d.mu.RLock()
	user, ok := d.users[userID]
	d.mu.RUnlock()
	if ok {
		return user, true
	}

	found, err := d.userRepo.FindByID(context.Background(), userID)
	if err != nil {
		d.logger.Debug("Directory lookup missed", slog.Uint64("user_id", userID))
		return models.User{}, false
	}
	d.Remember(*found)
	return *found, true
}
