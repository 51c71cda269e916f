package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) (WorkspaceResolver, *mocks.MockUserStore, *mocks.MockWorkspaceStore) {
	t.Helper()
	users := mocks.NewMockUserStore()
	workspaces := mocks.NewMockWorkspaceStore()
	resolver, err := NewWorkspaceResolver(users, workspaces, nil)
	require.NoError(t, err)
	return resolver, users, workspaces
}

func TestWorkspaceResolver_ResolveIsIdempotent(t *testing.T) {
	resolver, users, workspaces := newTestResolver(t)
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, domain.Identity{Subject: "sub-1", Email: "  Ada@Example.com "})
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, domain.Identity{Subject: "sub-1", Email: "ada@example.com"})
	require.NoError(t, err)

	assert.Equal(t, first.Workspace.ID, second.Workspace.ID)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "ada@example.com Personal Workspace", first.Workspace.Name)
	assert.Len(t, users.Users, 1)
	assert.Len(t, workspaces.Workspaces, 1)
	require.Len(t, workspaces.Members, 1)
	for _, member := range workspaces.Members {
		assert.Equal(t, domain.RoleOwner, member.Role)
		assert.Equal(t, first.User.ID, member.UserID)
	}
}

func TestWorkspaceResolver_ConcurrentFirstRequestsConverge(t *testing.T) {
	resolver, _, workspaces := newTestResolver(t)

	const callers = 8
	ids := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wc, err := resolver.Resolve(context.Background(), domain.Identity{Subject: "s", Email: "grace@example.com"})
			if assert.NoError(t, err) {
				ids <- wc.Workspace.ID.String()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1)
	assert.Len(t, workspaces.Members, 1)
}

func TestWorkspaceResolver_RejectsMissingEmail(t *testing.T) {
	resolver, users, _ := newTestResolver(t)

	for _, email := range []string{"", "   ", "not-an-email"} {
		_, err := resolver.Resolve(context.Background(), domain.Identity{Subject: "s", Email: email})
		assert.ErrorIs(t, err, domain.ErrUnauthorized, "email %q", email)
	}
	assert.Empty(t, users.Users)
}

func TestWorkspaceResolver_StoreFailures(t *testing.T) {
	t.Run("user upsert", func(t *testing.T) {
		resolver, users, _ := newTestResolver(t)
		users.UpsertFn = func(ctx context.Context, user *domain.User) (*domain.User, error) {
			return nil, errors.New("connection refused")
		}
		_, err := resolver.Resolve(context.Background(), domain.Identity{Subject: "s", Email: "a@b.co"})
		var serviceErr *ServiceError
		assert.True(t, errors.As(err, &serviceErr))
	})

	t.Run("membership upsert", func(t *testing.T) {
		resolver, _, workspaces := newTestResolver(t)
		workspaces.UpsertMemberFn = func(ctx context.Context, m *domain.WorkspaceMember) (*domain.WorkspaceMember, error) {
			return nil, errors.New("connection refused")
		}
		_, err := resolver.Resolve(context.Background(), domain.Identity{Subject: "s", Email: "a@b.co"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "membership")
	})
}
