package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	UpsertFn     func(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)

	mu    sync.Mutex
	Users map[string]*domain.User
}

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{Users: make(map[string]*domain.User)}
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Users[user.Email]; exists {
		return store.ErrEmailExists
	}
	m.Users[user.Email] = user
	return nil
}

// Upsert implements the UserStore interface
func (m *MockUserStore) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.Users[user.Email]; ok {
		return existing, nil
	}
	m.Users[user.Email] = user
	return user, nil
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.Users[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// WithTx implements the UserStore interface
func (m *MockUserStore) WithTx(*sql.Tx) store.UserStore {
	return m
}
