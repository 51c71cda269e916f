package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/domain"
)

// TaskStore defines the interface for task persistence. Every lookup is
// scoped to a workspace; a task in another workspace is reported as
// ErrTaskNotFound.
type TaskStore interface {
	// Create inserts a task. Returns ErrSourceVoiceNoteTaken when another task
	// in the workspace already references the same voice note.
	Create(ctx context.Context, task *domain.Task) error

	// GetForUpdate reads one task with a row lock. Only meaningful inside a
	// transaction. Returns ErrTaskNotFound if absent.
	GetForUpdate(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Task, error)

	// FindBySourceVoiceNote returns the task created from noteID, or ErrTaskNotFound.
	FindBySourceVoiceNote(ctx context.Context, workspaceID, noteID uuid.UUID) (*domain.Task, error)

	// Update writes every mutable field of task.
	Update(ctx context.Context, task *domain.Task) error

	// List returns tasks newest first, optionally restricted to one status.
	List(ctx context.Context, workspaceID uuid.UUID, status *domain.Status) ([]*domain.Task, error)

	// PurgeDeleted hard-deletes DELETED tasks whose deleted_at is at or
	// before cutoff and returns how many rows were removed.
	PurgeDeleted(ctx context.Context, cutoff time.Time) (int64, error)

	WithTx(tx *sql.Tx) TaskStore

	// DB returns the underlying connection for starting transactions.
	DB() *sql.DB
}
