package mocks

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/platform/filestore"
	"github.com/spf13/afero"
)

// MockAudioStore implements service.AudioStore for testing. By default it
// keeps uploads in an in-memory afero filesystem under BasePath.
type MockAudioStore struct {
	SaveFn   func(ctx context.Context, r io.Reader, filename, mimeType string) (*filestore.StoredAudio, error)
	OpenFn   func(ctx context.Context, name string) (afero.File, string, error)
	RemoveFn func(ctx context.Context, url string) error

	BasePath string

	mu      sync.Mutex
	fs      afero.Fs
	mimes   map[string]string
	Removed []string
}

// NewMockAudioStore creates an in-memory audio store serving under basePath.
func NewMockAudioStore(basePath string) *MockAudioStore {
	return &MockAudioStore{
		BasePath: strings.TrimRight(basePath, "/"),
		fs:       afero.NewMemMapFs(),
		mimes:    make(map[string]string),
	}
}

// Save implements the AudioStore interface
func (m *MockAudioStore) Save(
	ctx context.Context,
	r io.Reader,
	filename, mimeType string,
) (*filestore.StoredAudio, error) {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r, filename, mimeType)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, filestore.ErrEmptyAudio
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	name := uuid.NewString() + "." + filestore.DefaultExtension

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := afero.WriteFile(m.fs, name, data, 0o644); err != nil {
		return nil, err
	}
	m.mimes[name] = mimeType
	return &filestore.StoredAudio{
		Name:     name,
		URL:      m.URLFor(name),
		MimeType: mimeType,
		Size:     int64(len(data)),
	}, nil
}

// Open implements the AudioStore interface
func (m *MockAudioStore) Open(ctx context.Context, name string) (afero.File, string, error) {
	if m.OpenFn != nil {
		return m.OpenFn(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mimeType, ok := m.mimes[name]
	if !ok {
		return nil, "", filestore.ErrAudioNotFound
	}
	f, err := m.fs.Open(name)
	if err != nil {
		return nil, "", filestore.ErrAudioNotFound
	}
	return f, mimeType, nil
}

// Remove implements the AudioStore interface
func (m *MockAudioStore) Remove(ctx context.Context, url string) error {
	m.mu.Lock()
	m.Removed = append(m.Removed, url)
	m.mu.Unlock()
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, url)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	name := strings.TrimPrefix(url, m.BasePath+"/")
	delete(m.mimes, name)
	_ = m.fs.Remove(name)
	return nil
}

// URLFor implements the AudioStore interface
func (m *MockAudioStore) URLFor(name string) string {
	return m.BasePath + "/" + name
}
