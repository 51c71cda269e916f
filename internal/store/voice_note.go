package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/domain"
)

// VoiceNoteStore defines the interface for voice note persistence.
// Notes are owned by an identity string; lookups for another owner's note
// return ErrVoiceNoteNotFound.
type VoiceNoteStore interface {
	Create(ctx context.Context, note *domain.VoiceNote) error

	// GetForUpdate reads one note with a row lock. Only meaningful inside a
	// transaction. Returns ErrVoiceNoteNotFound if absent.
	GetForUpdate(ctx context.Context, ownerID string, id uuid.UUID) (*domain.VoiceNote, error)

	Update(ctx context.Context, note *domain.VoiceNote) error

	// List returns the owner's notes matching filter, newest first.
	List(ctx context.Context, ownerID string, filter domain.NoteFilter) ([]*domain.VoiceNote, error)

	// HasAudio reports whether ownerID owns a note whose audio URL is url.
	HasAudio(ctx context.Context, ownerID, url string) (bool, error)

	WithTx(tx *sql.Tx) VoiceNoteStore
	DB() *sql.DB
}
