package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/phrazzld/voicetask-api/internal/store"
)

const voiceNoteColumns = `id, owner_id, type, title, content, audio_url, audio_mime_type,
	duration_ms, status, task_created_at, deleted_at, created_at, updated_at`

// PostgresVoiceNoteStore implements store.VoiceNoteStore.
type PostgresVoiceNoteStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewPostgresVoiceNoteStore creates a voice note store.
func NewPostgresVoiceNoteStore(db *sql.DB, logger *slog.Logger) *PostgresVoiceNoteStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresVoiceNoteStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "voice_note_store")),
	}
}

var _ store.VoiceNoteStore = (*PostgresVoiceNoteStore)(nil)

// WithTx implements store.VoiceNoteStore.WithTx
func (s *PostgresVoiceNoteStore) WithTx(tx *sql.Tx) store.VoiceNoteStore {
	return &PostgresVoiceNoteStore{db: tx, sqlDB: s.sqlDB, logger: s.logger}
}

// DB implements store.VoiceNoteStore.DB
func (s *PostgresVoiceNoteStore) DB() *sql.DB {
	return s.sqlDB
}

// Create implements store.VoiceNoteStore.Create
func (s *PostgresVoiceNoteStore) Create(ctx context.Context, note *domain.VoiceNote) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO voice_notes (`+voiceNoteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		note.ID,
		note.OwnerID,
		string(note.Type),
		note.Title,
		nullString(note.Content),
		nullString(note.AudioURL),
		nullString(note.AudioMimeType),
		nullInt(note.DurationMs),
		string(note.Status),
		nullTime(note.TaskCreatedAt),
		nullTime(note.DeletedAt),
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create voice note",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return MapError(err)
	}

	log.Info("voice note created",
		slog.String("note_id", note.ID.String()),
		slog.String("type", string(note.Type)))
	return nil
}

// GetForUpdate implements store.VoiceNoteStore.GetForUpdate
func (s *PostgresVoiceNoteStore) GetForUpdate(
	ctx context.Context,
	ownerID string,
	id uuid.UUID,
) (*domain.VoiceNote, error) {
	return s.getOne(ctx,
		`SELECT `+voiceNoteColumns+` FROM voice_notes WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, ownerID)
}

func (s *PostgresVoiceNoteStore) getOne(ctx context.Context, query string, args ...any) (*domain.VoiceNote, error) {
	note, err := scanVoiceNote(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrVoiceNoteNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get voice note",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return note, nil
}

// Update implements store.VoiceNoteStore.Update
func (s *PostgresVoiceNoteStore) Update(ctx context.Context, note *domain.VoiceNote) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE voice_notes
		SET title = $1, content = $2, status = $3, task_created_at = $4,
			deleted_at = $5, updated_at = $6
		WHERE id = $7 AND owner_id = $8
	`,
		note.Title,
		nullString(note.Content),
		string(note.Status),
		nullTime(note.TaskCreatedAt),
		nullTime(note.DeletedAt),
		note.UpdatedAt,
		note.ID,
		note.OwnerID,
	)
	if err != nil {
		log.Error("failed to update voice note",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrVoiceNoteNotFound)
}

// List implements store.VoiceNoteStore.List
func (s *PostgresVoiceNoteStore) List(
	ctx context.Context,
	ownerID string,
	filter domain.NoteFilter,
) ([]*domain.VoiceNote, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`SELECT %s FROM voice_notes WHERE owner_id = $1`, voiceNoteColumns)
	args := []interface{}{ownerID}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.TaskCreated != nil {
		if *filter.TaskCreated {
			query += ` AND task_created_at IS NOT NULL`
		} else {
			query += ` AND task_created_at IS NULL`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list voice notes", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	notes := make([]*domain.VoiceNote, 0)
	for rows.Next() {
		note, err := scanVoiceNote(rows)
		if err != nil {
			return nil, MapError(err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return notes, nil
}

// HasAudio implements store.VoiceNoteStore.HasAudio
func (s *PostgresVoiceNoteStore) HasAudio(ctx context.Context, ownerID, url string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM voice_notes WHERE owner_id = $1 AND audio_url = $2)`,
		ownerID, url,
	).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

func scanVoiceNote(row rowScanner) (*domain.VoiceNote, error) {
	var (
		note          domain.VoiceNote
		noteType      string
		status        string
		content       sql.NullString
		audioURL      sql.NullString
		audioMimeType sql.NullString
		durationMs    sql.NullInt64
		taskCreatedAt sql.NullTime
		deletedAt     sql.NullTime
	)
	err := row.Scan(
		&note.ID,
		&note.OwnerID,
		&noteType,
		&note.Title,
		&content,
		&audioURL,
		&audioMimeType,
		&durationMs,
		&status,
		&taskCreatedAt,
		&deletedAt,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	note.Type = domain.NoteType(noteType)
	note.Status = domain.Status(status)
	note.Content = stringPtr(content)
	note.AudioURL = stringPtr(audioURL)
	note.AudioMimeType = stringPtr(audioMimeType)
	note.DurationMs = intPtr(durationMs)
	note.TaskCreatedAt = timePtr(taskCreatedAt)
	note.DeletedAt = timePtr(deletedAt)
	return &note, nil
}
