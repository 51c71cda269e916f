package postgres_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/voicetask-api/internal/platform/postgres"
	"github.com/phrazzld/voicetask-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		SchemaName:     "public",
		TableName:      "tasks",
		ColumnName:     "title",
		ConstraintName: constraint,
	}
}

// MockResult implements sql.Result for testing
type MockResult struct {
	rowsAffected int64
	err          error
}

func (m MockResult) LastInsertId() (int64, error) { return 0, m.err }

func (m MockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "no rows", err: sql.ErrNoRows, target: store.ErrNotFound},
		{name: "email unique", err: newPgError("23505", "users_email_key"), target: store.ErrEmailExists},
		{
			name:   "source voice note unique",
			err:    newPgError("23505", "tasks_workspace_source_voice_note_key"),
			target: store.ErrSourceVoiceNoteTaken,
		},
		{name: "other unique", err: newPgError("23505", "workspaces_name_key"), target: store.ErrDuplicate},
		{name: "foreign key", err: newPgError("23503", "workspace_members_user_id_fkey"), target: store.ErrInvalidEntity},
		{name: "check", err: newPgError("23514", "tasks_priority_check"), target: store.ErrInvalidEntity},
		{name: "not null", err: newPgError("23502", ""), target: store.ErrInvalidEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, postgres.MapError(tt.err), tt.target)
		})
	}

	t.Run("nil stays nil", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, postgres.MapError(nil))
	})

	t.Run("unmapped error passes through", func(t *testing.T) {
		t.Parallel()
		original := errors.New("connection reset")
		assert.Same(t, original, postgres.MapError(original))
	})

	t.Run("email unique is still a duplicate", func(t *testing.T) {
		t.Parallel()
		assert.True(t, store.IsDuplicateError(postgres.MapError(newPgError("23505", "users_email_key"))))
	})
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.CheckRowsAffected(MockResult{rowsAffected: 1}, store.ErrTaskNotFound))
	assert.ErrorIs(t,
		postgres.CheckRowsAffected(MockResult{rowsAffected: 0}, store.ErrTaskNotFound),
		store.ErrTaskNotFound)
	assert.ErrorIs(t, postgres.CheckRowsAffected(MockResult{rowsAffected: 0}, nil), store.ErrNotFound)
	assert.Error(t, postgres.CheckRowsAffected(nil, nil))

	readErr := errors.New("driver does not support rows affected")
	assert.ErrorIs(t, postgres.CheckRowsAffected(MockResult{err: readErr}, nil), readErr)
}
