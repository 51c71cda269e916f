package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/voicetask-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create inserts a new user. Returns ErrEmailExists when the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// Upsert inserts the user or, when the email already exists, returns the
	// stored row unchanged. Safe under concurrent calls for the same email.
	Upsert(ctx context.Context, user *domain.User) (*domain.User, error)

	// GetByEmail retrieves a user by normalized email. Returns ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
