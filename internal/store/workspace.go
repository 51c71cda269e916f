package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/voicetask-api/internal/domain"
)

// WorkspaceStore persists workspaces and their memberships.
type WorkspaceStore interface {
	// UpsertByName inserts the workspace or returns the existing one with the
	// same name.
	UpsertByName(ctx context.Context, workspace *domain.Workspace) (*domain.Workspace, error)

	// UpsertMember inserts the membership or overwrites the role of the
	// existing (workspace, user) pair.
	UpsertMember(ctx context.Context, member *domain.WorkspaceMember) (*domain.WorkspaceMember, error)

	WithTx(tx *sql.Tx) WorkspaceStore
}
