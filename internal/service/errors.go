package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/platform/filestore"
	"github.com/phrazzld/voicetask-api/internal/store"
)

// Service-level sentinels. Each wraps the domain category the API layer maps
// to a status code, so callers can match either the specific or the general error.
var (
	ErrTaskNotFound      = fmt.Errorf("%w: task", domain.ErrNotFound)
	ErrVoiceNoteNotFound = fmt.Errorf("%w: voice note", domain.ErrNotFound)
	ErrAudioNotFound     = fmt.Errorf("%w: audio", domain.ErrNotFound)
	ErrEmailTaken        = fmt.Errorf("%w: email already registered", domain.ErrConflict)

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)

	// ErrCronSecretNotConfigured means the purge endpoint cannot authenticate callers.
	ErrCronSecretNotConfigured = fmt.Errorf("%w: cron secret is not set", domain.ErrConfiguration)
)

// ServiceError wraps an unexpected failure with the operation that hit it.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError translates err for callers of the service layer.
//
// Domain errors pass through unchanged and store sentinels become their
// service equivalents. Anything else is wrapped in a ServiceError.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case isDomainError(err):
		return err
	case errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, store.ErrVoiceNoteNotFound):
		return ErrVoiceNoteNotFound
	case errors.Is(err, store.ErrEmailExists):
		return ErrEmailTaken
	case errors.Is(err, filestore.ErrAudioNotFound), errors.Is(err, filestore.ErrInvalidAudioName):
		return ErrAudioNotFound
	case errors.Is(err, filestore.ErrEmptyAudio):
		return domain.NewValidationError("audio", "is empty", err)
	case errors.Is(err, store.ErrInvalidEntity):
		return domain.NewValidationError("", message, err)
	case store.IsNotFoundError(err):
		return fmt.Errorf("%w: %s: %w", domain.ErrNotFound, message, err)
	case store.IsDuplicateError(err):
		return fmt.Errorf("%w: %s: %w", domain.ErrConflict, message, err)
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrConfiguration)
}
