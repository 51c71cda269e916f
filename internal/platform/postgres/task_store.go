package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/phrazzld/voicetask-api/internal/store"
)

const taskColumns = `id, workspace_id, title, notes, due_date, priority, status,
	source_voice_note_id, is_pinned, pinned_at, deleted_at, created_at, updated_at`

// PostgresTaskStore implements store.TaskStore.
type PostgresTaskStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store. db is used for transactions
// started through DB().
func NewPostgresTaskStore(db *sql.DB, logger *slog.Logger) *PostgresTaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, sqlDB: s.sqlDB, logger: s.logger}
}

// DB implements store.TaskStore.DB
func (s *PostgresTaskStore) DB() *sql.DB {
	return s.sqlDB
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		task.ID,
		task.WorkspaceID,
		task.Title,
		nullString(task.Notes),
		nullTime(task.DueDate),
		task.Priority,
		string(task.Status),
		nullUUID(task.SourceVoiceNoteID),
		task.IsPinned,
		nullTime(task.PinnedAt),
		nullTime(task.DeletedAt),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrSourceVoiceNoteTaken) {
			log.Debug("voice note already linked to a task",
				slog.String("workspace_id", task.WorkspaceID.String()))
			return store.ErrSourceVoiceNoteTaken
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("workspace_id", task.WorkspaceID.String()))
		return mapped
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("workspace_id", task.WorkspaceID.String()))
	return nil
}

// GetForUpdate implements store.TaskStore.GetForUpdate
func (s *PostgresTaskStore) GetForUpdate(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Task, error) {
	return s.getOne(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND workspace_id = $2 FOR UPDATE`, id, workspaceID)
}

// FindBySourceVoiceNote implements store.TaskStore.FindBySourceVoiceNote
func (s *PostgresTaskStore) FindBySourceVoiceNote(
	ctx context.Context,
	workspaceID, noteID uuid.UUID,
) (*domain.Task, error) {
	return s.getOne(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE workspace_id = $1 AND source_voice_note_id = $2`,
		workspaceID, noteID)
}

func (s *PostgresTaskStore) getOne(ctx context.Context, query string, args ...any) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return task, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = $1, notes = $2, due_date = $3, priority = $4, status = $5,
			is_pinned = $6, pinned_at = $7, deleted_at = $8, updated_at = $9
		WHERE id = $10 AND workspace_id = $11
	`,
		task.Title,
		nullString(task.Notes),
		nullTime(task.DueDate),
		task.Priority,
		string(task.Status),
		task.IsPinned,
		nullTime(task.PinnedAt),
		nullTime(task.DeletedAt),
		task.UpdatedAt,
		task.ID,
		task.WorkspaceID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task update matched no rows", slog.String("task_id", task.ID.String()))
		return err
	}
	return nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(
	ctx context.Context,
	workspaceID uuid.UUID,
	status *domain.Status,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE workspace_id = $1`
	args := []any{workspaceID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("workspace_id", workspaceID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

// PurgeDeleted implements store.TaskStore.PurgeDeleted
func (s *PostgresTaskStore) PurgeDeleted(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE status = $1 AND deleted_at <= $2`,
		string(domain.StatusDeleted), cutoff.UTC())
	if err != nil {
		log.Error("failed to purge deleted tasks", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("task", "purge", "failed to read affected rows", err)
	}

	log.Info("purged deleted tasks",
		slog.Int64("deleted_count", count),
		slog.Time("cutoff", cutoff.UTC()))
	return count, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task      domain.Task
		notes     sql.NullString
		dueDate   sql.NullTime
		status    string
		sourceID  uuid.NullUUID
		pinnedAt  sql.NullTime
		deletedAt sql.NullTime
	)
	err := row.Scan(
		&task.ID,
		&task.WorkspaceID,
		&task.Title,
		&notes,
		&dueDate,
		&task.Priority,
		&status,
		&sourceID,
		&task.IsPinned,
		&pinnedAt,
		&deletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Notes = stringPtr(notes)
	task.DueDate = timePtr(dueDate)
	task.Status = domain.Status(status)
	task.SourceVoiceNoteID = uuidPtr(sourceID)
	task.PinnedAt = timePtr(pinnedAt)
	task.DeletedAt = timePtr(deletedAt)
	return &task, nil
}
