package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. Its default behavior
// keeps tasks in memory and enforces the one-task-per-voice-note rule.
type MockTaskStore struct {
	CreateFn                func(ctx context.Context, task *domain.Task) error
	GetForUpdateFn          func(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Task, error)
	FindBySourceVoiceNoteFn func(ctx context.Context, workspaceID, noteID uuid.UUID) (*domain.Task, error)
	UpdateFn                func(ctx context.Context, task *domain.Task) error
	ListFn                  func(ctx context.Context, workspaceID uuid.UUID, status *domain.Status) ([]*domain.Task, error)
	PurgeDeletedFn          func(ctx context.Context, cutoff time.Time) (int64, error)

	// SQLDB is returned from DB; use NewTxDB for a sqlmock-backed value.
	SQLDB *sql.DB

	mu    sync.Mutex
	Tasks map[uuid.UUID]*domain.Task
}

// NewMockTaskStore creates an empty in-memory task store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{Tasks: make(map[uuid.UUID]*domain.Task)}
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.SourceVoiceNoteID != nil {
		for _, existing := range m.Tasks {
			if existing.WorkspaceID == task.WorkspaceID &&
				existing.SourceVoiceNoteID != nil &&
				*existing.SourceVoiceNoteID == *task.SourceVoiceNoteID {
				return store.ErrSourceVoiceNoteTaken
			}
		}
	}
	copied := *task
	m.Tasks[task.ID] = &copied
	return nil
}

// GetForUpdate implements the TaskStore interface
func (m *MockTaskStore) GetForUpdate(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Task, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, workspaceID, id)
	}
	return m.get(workspaceID, id)
}

func (m *MockTaskStore) get(workspaceID, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.Tasks[id]
	if !ok || task.WorkspaceID != workspaceID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// FindBySourceVoiceNote implements the TaskStore interface
func (m *MockTaskStore) FindBySourceVoiceNote(
	ctx context.Context,
	workspaceID, noteID uuid.UUID,
) (*domain.Task, error) {
	if m.FindBySourceVoiceNoteFn != nil {
		return m.FindBySourceVoiceNoteFn(ctx, workspaceID, noteID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, task := range m.Tasks {
		if task.WorkspaceID == workspaceID && task.SourceVoiceNoteID != nil && *task.SourceVoiceNoteID == noteID {
			copied := *task
			return &copied, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Tasks[task.ID]
	if !ok || existing.WorkspaceID != task.WorkspaceID {
		return store.ErrTaskNotFound
	}
	copied := *task
	m.Tasks[task.ID] = &copied
	return nil
}

// List implements the TaskStore interface
func (m *MockTaskStore) List(
	ctx context.Context,
	workspaceID uuid.UUID,
	status *domain.Status,
) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, workspaceID, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Task, 0)
	for _, task := range m.Tasks {
		if task.WorkspaceID != workspaceID || (status != nil && task.Status != *status) {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// PurgeDeleted implements the TaskStore interface
func (m *MockTaskStore) PurgeDeleted(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.PurgeDeletedFn != nil {
		return m.PurgeDeletedFn(ctx, cutoff)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, task := range m.Tasks {
		if task.Status == domain.StatusDeleted && task.DeletedAt != nil && !task.DeletedAt.After(cutoff) {
			delete(m.Tasks, id)
			n++
		}
	}
	return n, nil
}

// WithTx implements the TaskStore interface
func (m *MockTaskStore) WithTx(*sql.Tx) store.TaskStore {
	return m
}

// DB implements the TaskStore interface
func (m *MockTaskStore) DB() *sql.DB {
	return m.SQLDB
}
