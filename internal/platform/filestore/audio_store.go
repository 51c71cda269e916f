// Package filestore keeps uploaded voice note recordings on a filesystem
// abstracted by afero, so tests can run against memory.
package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/spf13/afero"
)

// DefaultExtension is used when neither the upload name nor its content
// reveal a usable extension.
const DefaultExtension = "webm"

// sniffLen is how many leading bytes are inspected for content detection.
const sniffLen = 3072

var (
	// ErrEmptyAudio is returned when an upload carries no bytes.
	ErrEmptyAudio = errors.New("audio upload is empty")

	// ErrAudioNotFound is returned when a stored file does not exist.
	ErrAudioNotFound = errors.New("audio file not found")

	// ErrInvalidAudioName is returned for names that do not address a stored file.
	ErrInvalidAudioName = errors.New("invalid audio file name")
)

var extensionPattern = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

// StoredAudio describes a saved recording.
type StoredAudio struct {
	Name     string
	URL      string
	MimeType string
	Size     int64
}

// AudioStore saves and serves recordings below a single directory.
type AudioStore struct {
	fs       afero.Fs
	dir      string
	basePath string
	now      func() time.Time
	logger   *slog.Logger
}

// NewAudioStore creates the directory if needed. publicBasePath is the URL
// prefix stored on notes, for example /uploads/voice-notes.
func NewAudioStore(fs afero.Fs, dir, publicBasePath string, logger *slog.Logger) (*AudioStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory %s: %w", dir, err)
	}
	return &AudioStore{
		fs:       fs,
		dir:      dir,
		basePath: "/" + strings.Trim(publicBasePath, "/"),
		now:      time.Now,
		logger:   logger.With(slog.String("component", "audio_store")),
	}, nil
}

// Save writes r to a new file named <unix-ms>-<uuid>.<ext>.
// The declared MIME type wins when present; otherwise the content is sniffed.
func (s *AudioStore) Save(ctx context.Context, r io.Reader, filename, declaredMime string) (*StoredAudio, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read audio upload: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyAudio
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	mimeType := strings.TrimSpace(declaredMime)
	if mimeType == "" {
		mimeType = detected.String()
	}
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mediaType
	}

	name := fmt.Sprintf("%d-%s.%s", s.now().UnixMilli(), uuid.NewString(), audioExtension(filename, mimeType, detected))

	f, err := s.fs.Create(path.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create audio file: %w", err)
	}
	size, copyErr := io.Copy(f, io.MultiReader(bytes.NewReader(head), r))
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = s.fs.Remove(path.Join(s.dir, name))
		return nil, fmt.Errorf("failed to write audio file: %w", errors.Join(copyErr, closeErr))
	}

	stored := &StoredAudio{
		Name:     name,
		URL:      s.basePath + "/" + name,
		MimeType: mimeType,
		Size:     size,
	}
	log.Info("audio stored",
		slog.String("file", name),
		slog.String("mime_type", mimeType),
		slog.Int64("size_bytes", size))
	return stored, nil
}

// URLFor returns the public URL of a stored file name.
func (s *AudioStore) URLFor(name string) string {
	return s.basePath + "/" + name
}

// Open returns the stored file and its detected MIME type.
func (s *AudioStore) Open(ctx context.Context, name string) (afero.File, string, error) {
	if !validName(name) {
		return nil, "", ErrInvalidAudioName
	}

	f, err := s.fs.Open(path.Join(s.dir, name))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrAudioNotFound, name)
	}

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("failed to inspect audio file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("failed to rewind audio file: %w", err)
	}
	return f, detected.String(), nil
}

// Remove deletes the file behind a URL produced by Save. Unknown URLs are ignored.
func (s *AudioStore) Remove(ctx context.Context, url string) error {
	name, ok := s.NameFromURL(url)
	if !ok {
		return nil
	}
	if err := s.fs.Remove(path.Join(s.dir, name)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to remove audio file",
			slog.String("file", name),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// NameFromURL extracts the file name from a URL produced by Save.
func (s *AudioStore) NameFromURL(url string) (string, bool) {
	name, found := strings.CutPrefix(url, s.basePath+"/")
	if !found || !validName(name) {
		return "", false
	}
	return name, true
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// audioExtension prefers the upload's own extension, then the MIME subtype,
// then the sniffed extension of audio or video content.
func audioExtension(filename, mimeType string, detected *mimetype.MIME) string {
	candidates := []string{
		strings.TrimPrefix(path.Ext(filename), "."),
		subtype(mimeType),
	}
	if isMedia(detected.String()) {
		candidates = append(candidates, strings.TrimPrefix(detected.Extension(), "."))
	}
	for _, c := range candidates {
		c = strings.ToLower(c)
		if extensionPattern.MatchString(c) {
			return c
		}
	}
	return DefaultExtension
}

func subtype(mimeType string) string {
	_, sub, found := strings.Cut(mimeType, "/")
	if !found {
		return ""
	}
	if i := strings.IndexAny(sub, ";+"); i >= 0 {
		sub = sub[:i]
	}
	return sub
}

func isMedia(mimeType string) bool {
	return strings.HasPrefix(mimeType, "audio/") || strings.HasPrefix(mimeType, "video/")
}
