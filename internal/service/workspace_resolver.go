package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/phrazzld/voicetask-api/internal/store"
)

// WorkspaceContext is the resolved caller: their user row and personal workspace.
type WorkspaceContext struct {
	User      *domain.User
	Workspace *domain.Workspace
}

// WorkspaceResolver finds or creates the caller's user, workspace and membership.
type WorkspaceResolver interface {
	Resolve(ctx context.Context, identity domain.Identity) (*WorkspaceContext, error)
}

type workspaceResolver struct {
	users      store.UserStore
	workspaces store.WorkspaceStore
	logger     *slog.Logger
}

// NewWorkspaceResolver creates a WorkspaceResolver.
func NewWorkspaceResolver(
	users store.UserStore,
	workspaces store.WorkspaceStore,
	logger *slog.Logger,
) (WorkspaceResolver, error) {
	if users == nil {
		return nil, fmt.Errorf("users cannot be nil")
	}
	if workspaces == nil {
		return nil, fmt.Errorf("workspaces cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &workspaceResolver{
		users:      users,
		workspaces: workspaces,
		logger:     logger.With(slog.String("component", "workspace_resolver")),
	}, nil
}

// Resolve upserts the user, the personal workspace and the OWNER membership
// in that order. The steps are not one transaction; each upsert converges on
// its own unique key, so concurrent first requests end in the same rows.
func (r *workspaceResolver) Resolve(ctx context.Context, identity domain.Identity) (*WorkspaceContext, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	email := domain.NormalizeEmail(identity.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: identity has no email", domain.ErrUnauthorized)
	}

	candidate, err := domain.NewUser(email, nil, "")
	if err != nil {
		return nil, fmt.Errorf("%w: identity email is not usable", domain.ErrUnauthorized)
	}

	user, err := r.users.Upsert(ctx, candidate)
	if err != nil {
		log.Error("failed to upsert user", slog.String("error", err.Error()))
		return nil, NewServiceError("resolve_workspace", "failed to upsert user", err)
	}

	workspace, err := r.workspaces.UpsertByName(ctx, domain.NewPersonalWorkspace(email))
	if err != nil {
		log.Error("failed to upsert workspace",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return nil, NewServiceError("resolve_workspace", "failed to upsert workspace", err)
	}

	_, err = r.workspaces.UpsertMember(ctx, &domain.WorkspaceMember{
		WorkspaceID: workspace.ID,
		UserID:      user.ID,
		Role:        domain.RoleOwner,
	})
	if err != nil {
		log.Error("failed to upsert workspace member",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()),
			slog.String("workspace_id", workspace.ID.String()))
		return nil, NewServiceError("resolve_workspace", "failed to upsert membership", err)
	}

	log.Debug("resolved workspace",
		slog.String("user_id", user.ID.String()),
		slog.String("workspace_id", workspace.ID.String()))
	return &WorkspaceContext{User: user, Workspace: workspace}, nil
}
