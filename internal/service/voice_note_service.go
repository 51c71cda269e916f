package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/platform/filestore"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/phrazzld/voicetask-api/internal/store"
	"github.com/spf13/afero"
)

// AudioStore persists uploaded recordings outside the database.
type AudioStore interface {
	Save(ctx context.Context, r io.Reader, filename, mimeType string) (*filestore.StoredAudio, error)
	Open(ctx context.Context, name string) (afero.File, string, error)
	Remove(ctx context.Context, url string) error
	URLFor(name string) string
}

// AudioUpload is a recording attached to a new note.
type AudioUpload struct {
	Reader   io.Reader
	Filename string
	MimeType string
}

// CreateVoiceNoteParams is the input to VoiceNoteService.Create.
// DurationMs is kept only when Audio is present.
type CreateVoiceNoteParams struct {
	Title      string
	Content    *string
	Type       string
	DurationMs *int
	Audio      *AudioUpload
}

// UpdateVoiceNoteParams is a partial update. A nil Title leaves the title
// alone; ContentSet with a nil Content clears the content.
type UpdateVoiceNoteParams struct {
	Title      *string
	ContentSet bool
	Content    *string
}

// VoiceNoteService manages notes owned by one identity.
type VoiceNoteService interface {
	Create(ctx context.Context, ownerID string, params CreateVoiceNoteParams) (*domain.VoiceNote, error)
	Update(ctx context.Context, ownerID string, noteID uuid.UUID, params UpdateVoiceNoteParams) (*domain.VoiceNote, error)
	SetStatus(ctx context.Context, ownerID string, noteID uuid.UUID, status string) (*domain.VoiceNote, error)

	// MarkTaskCreated latches the promotion timestamp and returns it. Repeat
	// calls return the first timestamp without writing.
	MarkTaskCreated(ctx context.Context, ownerID string, noteID uuid.UUID) (time.Time, error)

	// List returns the notes in the named tab; an empty tab lists every note.
	List(ctx context.Context, ownerID string, tab string) ([]*domain.VoiceNote, error)

	// OpenAudio opens a stored recording if ownerID owns a note that references it.
	OpenAudio(ctx context.Context, ownerID, name string) (afero.File, string, error)
}

type voiceNoteServiceImpl struct {
	notes  store.VoiceNoteStore
	audio  AudioStore
	logger *slog.Logger
	now    func() time.Time
}

// NewVoiceNoteService creates a VoiceNoteService.
func NewVoiceNoteService(
	notes store.VoiceNoteStore,
	audio AudioStore,
	logger *slog.Logger,
) (VoiceNoteService, error) {
	if notes == nil {
		return nil, fmt.Errorf("notes cannot be nil")
	}
	if audio == nil {
		return nil, fmt.Errorf("audio cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &voiceNoteServiceImpl{
		notes:  notes,
		audio:  audio,
		logger: logger.With(slog.String("component", "voice_note_service")),
		now:    time.Now,
	}, nil
}

// Create stores any attached audio first, then inserts the note. If the
// insert fails the stored file is removed again.
func (s *voiceNoteServiceImpl) Create(
	ctx context.Context,
	ownerID string,
	params CreateVoiceNoteParams,
) (*domain.VoiceNote, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := domain.ParseNoteType(params.Type); err != nil {
		return nil, err
	}
	if params.DurationMs != nil && *params.DurationMs < 0 {
		return nil, domain.NewValidationError("durationMs", "cannot be negative", domain.ErrValidation)
	}
	hasAudio := params.Audio != nil && params.Audio.Reader != nil
	if err := domain.ValidateNoteInput(params.Title, params.Content, hasAudio); err != nil {
		return nil, err
	}

	var attachment *domain.AudioAttachment
	if hasAudio {
		stored, err := s.audio.Save(ctx, params.Audio.Reader, params.Audio.Filename, params.Audio.MimeType)
		if err != nil {
			if !errors.Is(err, filestore.ErrEmptyAudio) {
				log.Error("failed to store audio", slog.String("error", err.Error()))
			}
			return nil, NewServiceError("create_voice_note", "failed to store audio", err)
		}
		attachment = &domain.AudioAttachment{
			URL:        stored.URL,
			MimeType:   stored.MimeType,
			DurationMs: params.DurationMs,
		}
	}

	note, err := domain.NewVoiceNote(ownerID, params.Title, params.Content, attachment)
	if err != nil {
		s.discardAudio(ctx, attachment)
		return nil, err
	}

	if err := s.notes.Create(ctx, note); err != nil {
		log.Error("failed to save voice note", slog.String("error", err.Error()))
		s.discardAudio(ctx, attachment)
		return nil, NewServiceError("create_voice_note", "failed to save voice note", err)
	}

	log.Info("voice note created",
		slog.String("note_id", note.ID.String()),
		slog.String("type", string(note.Type)))
	return note, nil
}

func (s *voiceNoteServiceImpl) discardAudio(ctx context.Context, attachment *domain.AudioAttachment) {
	if attachment == nil {
		return
	}
	if err := s.audio.Remove(context.WithoutCancel(ctx), attachment.URL); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to remove orphaned audio",
			slog.String("url", attachment.URL),
			slog.String("error", err.Error()))
	}
}

// Update implements VoiceNoteService.
func (s *voiceNoteServiceImpl) Update(
	ctx context.Context,
	ownerID string,
	noteID uuid.UUID,
	params UpdateVoiceNoteParams,
) (*domain.VoiceNote, error) {
	return s.mutate(ctx, "update_voice_note", ownerID, noteID, func(note *domain.VoiceNote) (bool, error) {
		changed := false
		if params.Title != nil {
			note.SetTitle(*params.Title)
			changed = true
		}
		if params.ContentSet {
			note.SetContent(params.Content)
			changed = true
		}
		return changed, nil
	})
}

// SetStatus implements VoiceNoteService.
func (s *voiceNoteServiceImpl) SetStatus(
	ctx context.Context,
	ownerID string,
	noteID uuid.UUID,
	status string,
) (*domain.VoiceNote, error) {
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, "set_voice_note_status", ownerID, noteID, func(note *domain.VoiceNote) (bool, error) {
		return true, note.SetStatus(parsed, s.now())
	})
}

// MarkTaskCreated implements VoiceNoteService.
func (s *voiceNoteServiceImpl) MarkTaskCreated(
	ctx context.Context,
	ownerID string,
	noteID uuid.UUID,
) (time.Time, error) {
	var at time.Time
	_, err := s.mutate(ctx, "mark_task_created", ownerID, noteID, func(note *domain.VoiceNote) (bool, error) {
		var changed bool
		at, changed = note.MarkTaskCreated(s.now())
		return changed, nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return at, nil
}

// mutate locks the note, applies fn and writes it back when fn reports a change.
func (s *voiceNoteServiceImpl) mutate(
	ctx context.Context,
	operation string,
	ownerID string,
	noteID uuid.UUID,
	fn func(note *domain.VoiceNote) (bool, error),
) (*domain.VoiceNote, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var result *domain.VoiceNote
	err := store.RunInTransaction(ctx, s.notes.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.notes.WithTx(tx)

		note, err := txStore.GetForUpdate(ctx, ownerID, noteID)
		if err != nil {
			return err
		}
		changed, err := fn(note)
		if err != nil {
			return err
		}
		if changed {
			if err := txStore.Update(ctx, note); err != nil {
				return err
			}
		}
		result = note
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrVoiceNoteNotFound) && !errors.Is(err, domain.ErrValidation) {
			log.Error("voice note mutation failed",
				slog.String("operation", operation),
				slog.String("note_id", noteID.String()),
				slog.String("error", err.Error()))
		}
		return nil, NewServiceError(operation, "failed to update voice note", err)
	}
	return result, nil
}

// List implements VoiceNoteService.
func (s *voiceNoteServiceImpl) List(ctx context.Context, ownerID string, tab string) ([]*domain.VoiceNote, error) {
	parsed, err := domain.ParseNoteTab(tab)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.List(ctx, ownerID, parsed.Filter())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list voice notes",
			slog.String("tab", string(parsed)),
			slog.String("error", err.Error()))
		return nil, NewServiceError("list_voice_notes", "failed to list voice notes", err)
	}
	return notes, nil
}

// OpenAudio implements VoiceNoteService.
func (s *voiceNoteServiceImpl) OpenAudio(ctx context.Context, ownerID, name string) (afero.File, string, error) {
	owned, err := s.notes.HasAudio(ctx, ownerID, s.audio.URLFor(name))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check audio ownership",
			slog.String("error", err.Error()))
		return nil, "", NewServiceError("open_audio", "failed to check audio ownership", err)
	}
	if !owned {
		return nil, "", ErrAudioNotFound
	}

	f, mimeType, err := s.audio.Open(ctx, name)
	if err != nil {
		return nil, "", NewServiceError("open_audio", "failed to open audio", err)
	}
	return f, mimeType, nil
}
