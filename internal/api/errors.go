package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/api/shared"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/service"
	"github.com/phrazzld/voicetask-api/internal/service/auth"
)

const unexpectedErrorMessage = "An unexpected error occurred"

// MapErrorToStatusCode maps internal errors to HTTP status codes. Anything
// unclassified is a 500.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	case err == nil:
		return http.StatusInternalServerError

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, shared.ErrEmptyBody),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict

	default:
		// Configuration errors land here too.
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a message that can be shown to clients.
// Raw error text is never returned for unclassified errors.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return unexpectedErrorMessage
	}

	var (
		validationErr  *domain.ValidationError
		conflictErr    *domain.ConflictError
		validationErrs validator.ValidationErrors
	)

	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.As(err, &validationErr):
		if validationErr.Field == "" {
			return validationErr.Message
		}
		return fmt.Sprintf("%s %s", validationErr.Field, validationErr.Message)
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation):
		return "Validation error"

	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, service.ErrVoiceNoteNotFound):
		return "Voice note not found"
	case errors.Is(err, service.ErrAudioNotFound):
		return "Audio not found"
	case errors.Is(err, domain.ErrNotFound):
		return "Not found"

	case errors.Is(err, service.ErrEmailTaken):
		return "Email already exists"
	case errors.As(err, &conflictErr):
		return conflictErr.Message
	case errors.Is(err, domain.ErrConflict):
		return "Conflict"

	case errors.Is(err, domain.ErrConfiguration):
		return "Server configuration error"

	default:
		return unexpectedErrorMessage
	}
}

// SanitizeValidationError reports the first failed field of a validator
// error without exposing struct names.
func SanitizeValidationError(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Validation error"
	}
	fieldErr := errs[0]
	return fmt.Sprintf("Invalid %s: %s", fieldErr.Field(), getValidationTagMessage(fieldErr.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid ID format"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the response for err. Conflicts carry the id of the
// existing resource. Server errors are logged, redacted, with the original
// error; other statuses log at debug level.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)

	var opts []shared.ResponseOption
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) && conflictErr.ExistingID != uuid.Nil {
		opts = append(opts, shared.WithExistingTaskID(conflictErr.ExistingID.String()))
	}
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
