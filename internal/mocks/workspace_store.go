package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/store"
)

// MockWorkspaceStore implements store.WorkspaceStore for testing
type MockWorkspaceStore struct {
	UpsertByNameFn func(ctx context.Context, workspace *domain.Workspace) (*domain.Workspace, error)
	UpsertMemberFn func(ctx context.Context, member *domain.WorkspaceMember) (*domain.WorkspaceMember, error)

	mu         sync.Mutex
	Workspaces map[string]*domain.Workspace
	Members    map[[2]uuid.UUID]*domain.WorkspaceMember
}

// NewMockWorkspaceStore creates an empty in-memory workspace store.
func NewMockWorkspaceStore() *MockWorkspaceStore {
	return &MockWorkspaceStore{
		Workspaces: make(map[string]*domain.Workspace),
		Members:    make(map[[2]uuid.UUID]*domain.WorkspaceMember),
	}
}

// UpsertByName implements the WorkspaceStore interface
func (m *MockWorkspaceStore) UpsertByName(
	ctx context.Context,
	workspace *domain.Workspace,
) (*domain.Workspace, error) {
	if m.UpsertByNameFn != nil {
		return m.UpsertByNameFn(ctx, workspace)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.Workspaces[workspace.Name]; ok {
		return existing, nil
	}
	m.Workspaces[workspace.Name] = workspace
	return workspace, nil
}

// UpsertMember implements the WorkspaceStore interface
func (m *MockWorkspaceStore) UpsertMember(
	ctx context.Context,
	member *domain.WorkspaceMember,
) (*domain.WorkspaceMember, error) {
	if m.UpsertMemberFn != nil {
		return m.UpsertMemberFn(ctx, member)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]uuid.UUID{member.WorkspaceID, member.UserID}
	if existing, ok := m.Members[key]; ok {
		existing.Role = member.Role
		return existing, nil
	}
	m.Members[key] = member
	return member, nil
}

// WithTx implements the WorkspaceStore interface
func (m *MockWorkspaceStore) WithTx(*sql.Tx) store.WorkspaceStore {
	return m
}
