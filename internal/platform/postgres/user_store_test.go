package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumnNames = []string{"id", "email", "name", "hashed_password", "created_at", "updated_at"}

func TestPostgresUserStore_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, nil)
		user, err := domain.NewUser("ada@example.com", nil, "hash")
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(user.ID, "ada@example.com", sqlmock.AnyArg(), sqlmock.AnyArg(), user.CreatedAt, user.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), user))
	})

	t.Run("email taken", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, nil)
		user, err := domain.NewUser("ada@example.com", nil, "hash")
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersEmailKey})

		assert.ErrorIs(t, s.Create(context.Background(), user), store.ErrEmailExists)
	})
}

func TestPostgresUserStore_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresUserStore(db, nil)
	user, err := domain.NewUser("Ada@Example.com", nil, "")
	require.NoError(t, err)

	existingID := uuid.New()
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email")).
		WillReturnRows(sqlmock.NewRows(userColumnNames).
			AddRow(existingID.String(), "ada@example.com", nil, nil, created, created))

	stored, err := s.Upsert(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, existingID, stored.ID)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.Empty(t, stored.HashedPassword)
}

func TestPostgresUserStore_GetByEmail(t *testing.T) {
	t.Run("normalizes the lookup", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, nil)
		id := uuid.New()
		now := time.Now().UTC()

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(userColumnNames).
				AddRow(id.String(), "ada@example.com", "Ada", "hash", now, now))

		user, err := s.GetByEmail(context.Background(), "  ADA@example.com ")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		require.NotNil(t, user.Name)
		assert.Equal(t, "Ada", *user.Name)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
			WillReturnRows(sqlmock.NewRows(userColumnNames))

		_, err := s.GetByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestPostgresWorkspaceStore_Upserts(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresWorkspaceStore(db, nil)
	ws := domain.NewPersonalWorkspace("ada@example.com")
	userID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (name) DO UPDATE")).
		WithArgs(ws.ID, "ada@example.com Personal Workspace", ws.CreatedAt, ws.UpdatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(ws.ID.String(), ws.Name, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (workspace_id, user_id) DO UPDATE")).
		WithArgs(ws.ID, userID, "OWNER").
		WillReturnRows(sqlmock.NewRows([]string{"workspace_id", "user_id", "role", "created_at"}).
			AddRow(ws.ID.String(), userID.String(), "OWNER", now))

	stored, err := s.UpsertByName(context.Background(), ws)
	require.NoError(t, err)
	assert.Equal(t, ws.ID, stored.ID)

	member, err := s.UpsertMember(context.Background(), &domain.WorkspaceMember{
		WorkspaceID: stored.ID,
		UserID:      userID,
		Role:        domain.RoleOwner,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, member.Role)
	assert.Equal(t, userID, member.UserID)
}

