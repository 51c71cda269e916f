package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/store"
)

// MockVoiceNoteStore implements store.VoiceNoteStore for testing
type MockVoiceNoteStore struct {
	CreateFn       func(ctx context.Context, note *domain.VoiceNote) error
	GetForUpdateFn func(ctx context.Context, ownerID string, id uuid.UUID) (*domain.VoiceNote, error)
	UpdateFn       func(ctx context.Context, note *domain.VoiceNote) error
	ListFn         func(ctx context.Context, ownerID string, filter domain.NoteFilter) ([]*domain.VoiceNote, error)
	HasAudioFn     func(ctx context.Context, ownerID, url string) (bool, error)

	// SQLDB is returned from DB; use NewTxDB for a sqlmock-backed value.
	SQLDB *sql.DB

	// UpdateCallCount counts calls that reached the default or custom Update.
	UpdateCallCount int

	mu    sync.Mutex
	Notes map[uuid.UUID]*domain.VoiceNote
}

// NewMockVoiceNoteStore creates an empty in-memory voice note store.
func NewMockVoiceNoteStore() *MockVoiceNoteStore {
	return &MockVoiceNoteStore{Notes: make(map[uuid.UUID]*domain.VoiceNote)}
}

// Create implements the VoiceNoteStore interface
func (m *MockVoiceNoteStore) Create(ctx context.Context, note *domain.VoiceNote) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, note)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *note
	m.Notes[note.ID] = &copied
	return nil
}

// GetForUpdate implements the VoiceNoteStore interface
func (m *MockVoiceNoteStore) GetForUpdate(
	ctx context.Context,
	ownerID string,
	id uuid.UUID,
) (*domain.VoiceNote, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, ownerID, id)
	}
	return m.get(ownerID, id)
}

func (m *MockVoiceNoteStore) get(ownerID string, id uuid.UUID) (*domain.VoiceNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note, ok := m.Notes[id]
	if !ok || note.OwnerID != ownerID {
		return nil, store.ErrVoiceNoteNotFound
	}
	copied := *note
	return &copied, nil
}

// Update implements the VoiceNoteStore interface
func (m *MockVoiceNoteStore) Update(ctx context.Context, note *domain.VoiceNote) error {
	m.mu.Lock()
	m.UpdateCallCount++
	m.mu.Unlock()
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, note)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Notes[note.ID]
	if !ok || existing.OwnerID != note.OwnerID {
		return store.ErrVoiceNoteNotFound
	}
	copied := *note
	m.Notes[note.ID] = &copied
	return nil
}

// List implements the VoiceNoteStore interface
func (m *MockVoiceNoteStore) List(
	ctx context.Context,
	ownerID string,
	filter domain.NoteFilter,
) ([]*domain.VoiceNote, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, ownerID, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.VoiceNote, 0)
	for _, note := range m.Notes {
		if note.OwnerID != ownerID {
			continue
		}
		if filter.Status != nil && note.Status != *filter.Status {
			continue
		}
		if filter.TaskCreated != nil && *filter.TaskCreated != (note.TaskCreatedAt != nil) {
			continue
		}
		copied := *note
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// HasAudio implements the VoiceNoteStore interface
func (m *MockVoiceNoteStore) HasAudio(ctx context.Context, ownerID, url string) (bool, error) {
	if m.HasAudioFn != nil {
		return m.HasAudioFn(ctx, ownerID, url)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, note := range m.Notes {
		if note.OwnerID == ownerID && note.AudioURL != nil && *note.AudioURL == url {
			return true, nil
		}
	}
	return false, nil
}

// WithTx implements the VoiceNoteStore interface
func (m *MockVoiceNoteStore) WithTx(*sql.Tx) store.VoiceNoteStore {
	return m
}

// DB implements the VoiceNoteStore interface
func (m *MockVoiceNoteStore) DB() *sql.DB {
	return m.SQLDB
}
