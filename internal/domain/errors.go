package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidPriority = errors.New("priority must be 1, 2, or 3")
	ErrInvalidDueDate  = errors.New("due date must be a valid yyyy-mm-dd date")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidTab      = errors.New("invalid tab")
	ErrInvalidNoteType = errors.New("invalid note type")

	// ErrEmptyNote is returned when a note has no title, no content and no audio.
	ErrEmptyNote = errors.New("a note needs a title, content, or audio")

	// ErrUnauthorized is returned when no usable identity is present.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrNotFound is returned when an entity is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an operation collides with existing state.
	ErrConflict = errors.New("conflict")

	// ErrConfiguration is returned when a required server setting is missing.
	ErrConfiguration = errors.New("server configuration error")
)

// ValidationError describes a single invalid input field.
// It always matches ErrValidation under errors.Is, in addition to its wrapped cause.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for the named field.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation as a match so callers need not know the cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError reports that a resource already exists and carries its ID.
type ConflictError struct {
	Resource   string
	ExistingID uuid.UUID
	Message    string
}

// NewConflictError creates a ConflictError for the given resource.
func NewConflictError(resource string, existingID uuid.UUID, message string) *ConflictError {
	return &ConflictError{Resource: resource, ExistingID: existingID, Message: message}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s (existing id %s)", e.Resource, e.Message, e.ExistingID)
}

// Is reports ErrConflict as a match.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
