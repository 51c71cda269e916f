package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/api/shared"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/service"
	"github.com/phrazzld/voicetask-api/internal/service/auth"
	"github.com/phrazzld/voicetask-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "nil error", err: nil, expectedStatus: http.StatusInternalServerError},
		{name: "unauthorized", err: domain.ErrUnauthorized, expectedStatus: http.StatusUnauthorized},
		{name: "invalid credentials", err: service.ErrInvalidCredentials, expectedStatus: http.StatusUnauthorized},
		{name: "expired token", err: auth.ErrExpiredToken, expectedStatus: http.StatusUnauthorized},
		{
			name:           "validation error",
			err:            domain.NewValidationError("title", "cannot be empty", domain.ErrEmptyTitle),
			expectedStatus: http.StatusBadRequest,
		},
		{name: "invalid id", err: domain.ErrInvalidID, expectedStatus: http.StatusBadRequest},
		{name: "empty body", err: shared.ErrEmptyBody, expectedStatus: http.StatusBadRequest},
		{name: "task not found", err: service.ErrTaskNotFound, expectedStatus: http.StatusNotFound},
		{
			name:           "wrapped not found",
			err:            fmt.Errorf("update: %w", service.ErrVoiceNoteNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "conflict",
			err:            domain.NewConflictError("task", uuid.New(), "exists"),
			expectedStatus: http.StatusConflict,
		},
		{name: "email taken", err: service.ErrEmailTaken, expectedStatus: http.StatusConflict},
		{
			name:           "configuration",
			err:            service.ErrCronSecretNotConfigured,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "service error",
			err:            &service.ServiceError{Operation: "list_tasks", Message: "boom", Err: store.ErrTransactionFailed},
			expectedStatus: http.StatusInternalServerError,
		},
		{name: "unknown error", err: errors.New("unknown"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: "An unexpected error occurred"},
		{
			name:     "field validation",
			err:      domain.NewValidationError("title", "cannot be empty", domain.ErrEmptyTitle),
			expected: "title cannot be empty",
		},
		{
			name:     "validation without field",
			err:      domain.NewValidationError("", "a note needs a title, content, or audio", domain.ErrEmptyNote),
			expected: "a note needs a title, content, or audio",
		},
		{name: "task not found", err: service.ErrTaskNotFound, expected: "Task not found"},
		{name: "voice note not found", err: service.ErrVoiceNoteNotFound, expected: "Voice note not found"},
		{name: "audio not found", err: service.ErrAudioNotFound, expected: "Audio not found"},
		{
			name:     "conflict",
			err:      domain.NewConflictError("task", uuid.New(), "a task already exists for this voice note"),
			expected: "a task already exists for this voice note",
		},
		{name: "email taken", err: service.ErrEmailTaken, expected: "Email already exists"},
		{name: "invalid credentials", err: service.ErrInvalidCredentials, expected: "Invalid credentials"},
		{name: "configuration", err: service.ErrCronSecretNotConfigured, expected: "Server configuration error"},
		{
			name:     "raw database error",
			err:      errors.New("pq: password authentication failed for user \"voicetask\""),
			expected: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	req := &LoginRequest{Email: "ada@example.com"}
	err := shared.ValidateRequest(req)
	require.Error(t, err)

	assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(err))
	assert.Equal(t, "Invalid Password: required field", GetSafeErrorMessage(err))
}

func TestHandleAPIError(t *testing.T) {
	t.Run("conflict carries existing task id", func(t *testing.T) {
		existing := uuid.New()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)

		HandleAPIError(rec, req, domain.NewConflictError("task", existing, "a task already exists for this voice note"))

		assert.Equal(t, http.StatusConflict, rec.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, existing.String(), body["existingTaskId"])
	})

	t.Run("internal errors are not leaked", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

		HandleAPIError(rec, req, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "10.0.0.5")
		assert.NotContains(t, rec.Body.String(), "existingTaskId")
		var body shared.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "An unexpected error occurred", body.Error)
	})
}
