package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/phrazzld/voicetask-api/internal/store"
)

// PostgresWorkspaceStore implements store.WorkspaceStore.
type PostgresWorkspaceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWorkspaceStore creates a workspace store over db.
func NewPostgresWorkspaceStore(db store.DBTX, logger *slog.Logger) *PostgresWorkspaceStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresWorkspaceStore{
		db:     db,
		logger: logger.With(slog.String("component", "workspace_store")),
	}
}

var _ store.WorkspaceStore = (*PostgresWorkspaceStore)(nil)

// WithTx implements store.WorkspaceStore.WithTx
func (s *PostgresWorkspaceStore) WithTx(tx *sql.Tx) store.WorkspaceStore {
	return &PostgresWorkspaceStore{db: tx, logger: s.logger}
}

// UpsertByName implements store.WorkspaceStore.UpsertByName
func (s *PostgresWorkspaceStore) UpsertByName(
	ctx context.Context,
	workspace *domain.Workspace,
) (*domain.Workspace, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var stored domain.Workspace
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO workspaces (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at, updated_at
	`, workspace.ID, workspace.Name, workspace.CreatedAt, workspace.UpdatedAt).Scan(
		&stored.ID, &stored.Name, &stored.CreatedAt, &stored.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert workspace", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return &stored, nil
}

// UpsertMember implements store.WorkspaceStore.UpsertMember
func (s *PostgresWorkspaceStore) UpsertMember(
	ctx context.Context,
	member *domain.WorkspaceMember,
) (*domain.WorkspaceMember, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		stored domain.WorkspaceMember
		role   string
	)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (workspace_id, user_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING workspace_id, user_id, role, created_at
	`, member.WorkspaceID, member.UserID, string(member.Role)).Scan(
		&stored.WorkspaceID, &stored.UserID, &role, &stored.CreatedAt,
	)
	if err != nil {
		log.Error("failed to upsert workspace member",
			slog.String("error", err.Error()),
			slog.String("workspace_id", member.WorkspaceID.String()),
			slog.String("user_id", member.UserID.String()))
		return nil, MapError(err)
	}
	stored.Role = domain.Role(role)
	return &stored, nil
}

