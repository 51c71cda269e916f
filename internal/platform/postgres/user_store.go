package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/phrazzld/voicetask-api/internal/store"
)

const userColumns = `id, email, name, hashed_password, created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// If logger is nil, the default logger is used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create", slog.String("error", err.Error()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Email, nullString(user.Name), emptyToNull(user.HashedPassword), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrEmailExists) {
			log.Debug("user email already registered", slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return mapped
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// Upsert implements store.UserStore.Upsert. The no-op DO UPDATE makes the
// statement return the stored row when the email already exists.
func (s *PostgresUserStore) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING `+userColumns,
		user.ID, user.Email, nullString(user.Name), emptyToNull(user.HashedPassword), user.CreatedAt, user.UpdatedAt)

	stored, err := scanUser(row)
	if err != nil {
		log.Error("failed to upsert user", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return stored, nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, domain.NormalizeEmail(email))
	return s.getOne(ctx, row)
}

func (s *PostgresUserStore) getOne(ctx context.Context, row *sql.Row, attrs ...any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", attrs...)
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", append(attrs, slog.String("error", err.Error()))...)
		return nil, MapError(err)
	}
	return user, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user           domain.User
		name           sql.NullString
		hashedPassword sql.NullString
	)
	if err := row.Scan(&user.ID, &user.Email, &name, &hashedPassword, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	user.Name = stringPtr(name)
	user.HashedPassword = hashedPassword.String
	return &user, nil
}
