package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/sprint-tracker/internal/constants"
	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo  repository.UserRepository
	directory *DirectoryService
	isAdmin   func(username string) bool
}

// NewAuthService creates a new AuthService. isAdmin decides which new
// accounts are administrators; nil means none.
func NewAuthService(userRepo repository.UserRepository, directory *DirectoryService, isAdmin func(username string) bool) *AuthService {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &AuthService{
		userRepo:  userRepo,
		directory: directory,
		isAdmin:   isAdmin,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username    string
	Password    string
	DisplayName string
	AvatarURL   string
}

// Signup creates a new operator account.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		AvatarURL:    input.AvatarURL,
		IsAdmin:      s.isAdmin(username),
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.directory != nil {
		s.directory.Remember(*user)
	}
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ProfileInput changes how a user is shown in the console. Nil fields are
// left as they are; an empty avatar URL removes the avatar.
type ProfileInput struct {
	DisplayName *string
	AvatarURL   *string
}

// UpdateProfile edits a user's display name and avatar and refreshes the
// directory so comments and assignees show the new values.
func (s *AuthService) UpdateProfile(ctx context.Context, id uint64, input ProfileInput) (*models.User, error) {
	fields := map[string]any{}
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if len(name) > constants.MaxDisplayNameLength {
			return nil, ErrDisplayNameTooLong
		}
		fields["display_name"] = name
	}
	if input.AvatarURL != nil {
		fields["avatar_url"] = strings.TrimSpace(*input.AvatarURL)
	}

	if len(fields) > 0 {
		if err := s.userRepo.Update(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.directory != nil {
		s.directory.Remember(*user)
	}
	return user, nil
}
