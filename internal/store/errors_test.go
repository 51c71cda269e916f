package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityErrors(t *testing.T) {
	t.Parallel()

	notFound := []error{ErrUserNotFound, ErrWorkspaceNotFound, ErrTaskNotFound, ErrVoiceNoteNotFound}
	for _, err := range notFound {
		assert.True(t, IsNotFoundError(err), err.Error())
		assert.False(t, IsDuplicateError(err), err.Error())
	}

	for _, err := range []error{ErrEmailExists, ErrSourceVoiceNoteTaken} {
		assert.True(t, IsDuplicateError(err), err.Error())
		assert.False(t, IsNotFoundError(err), err.Error())
	}

	wrapped := fmt.Errorf("loading: %w", ErrTaskNotFound)
	assert.True(t, IsNotFoundError(wrapped))
	assert.False(t, IsNotFoundError(errors.New("other")))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewStoreError("task", "update", "write failed", cause)
	assert.Equal(t, "update operation on task failed: write failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("task", "purge", "nothing to do", nil)
	assert.Equal(t, "purge operation on task failed: nothing to do", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
