package services

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors wrap exactly one of these so callers can
// branch with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrValidationFailed  = errors.New("validation failed")
	ErrPersistenceFailed = errors.New("persistence failed")
)

var (
	ErrTaskNotFound    = fmt.Errorf("task %w", ErrNotFound)
	ErrSubtaskNotFound = fmt.Errorf("subtask %w", ErrNotFound)
	ErrSprintNotFound  = fmt.Errorf("sprint %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)

	ErrNotCommentOwner = fmt.Errorf("%w: only the author or an administrator can delete this comment", ErrPermissionDenied)

	ErrTitleRequired       = fmt.Errorf("%w: title is required", ErrValidationFailed)
	ErrDueDateRequired     = fmt.Errorf("%w: due date is required", ErrValidationFailed)
	ErrInvalidStatus       = fmt.Errorf("%w: unknown status", ErrValidationFailed)
	ErrInvalidPriority     = fmt.Errorf("%w: unknown priority", ErrValidationFailed)
	ErrSprintNameRequired  = fmt.Errorf("%w: sprint name is required", ErrValidationFailed)
	ErrInvalidSprintRange  = fmt.Errorf("%w: sprint end date is before its start date", ErrValidationFailed)
	ErrCommentTextRequired = fmt.Errorf("%w: comment text is required", ErrValidationFailed)
)

var (
	ErrUsernameTaken          = errors.New("username already exists")
	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrPasswordTooShort       = fmt.Errorf("%w: password too short", ErrValidationFailed)
	ErrUsernameRequired       = fmt.Errorf("%w: username is required", ErrValidationFailed)
	ErrDisplayNameTooLong     = fmt.Errorf("%w: display name is too long", ErrValidationFailed)
	ErrFailedToHashPassword   = errors.New("failed to hash password")
	ErrAppExists              = errors.New("app already exists")
	ErrAppFieldsRequired      = fmt.Errorf("%w: app id and name are required", ErrValidationFailed)
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoSubtasksGenerated  = errors.New("AI did not suggest any subtasks")
)
