package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voicetask-api/internal/domain"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/phrazzld/voicetask-api/internal/store"
)

// CreateTaskParams is the input to TaskService.Create.
// A nil Priority means the default; a blank DueDate means no due date.
type CreateTaskParams struct {
	Title             string
	Notes             *string
	DueDate           string
	Priority          *int
	SourceVoiceNoteID *uuid.UUID
}

// UpdateTaskParams is a partial update. Nil pointers leave a field alone.
// Notes and DueDate carry a presence flag so an explicit null can clear them.
type UpdateTaskParams struct {
	Title      *string
	NotesSet   bool
	Notes      *string
	DueDateSet bool
	DueDate    *string
	Priority   *int
}

// TaskService manages the task lifecycle within a workspace.
type TaskService interface {
	Create(ctx context.Context, workspaceID uuid.UUID, params CreateTaskParams) (*domain.Task, error)
	Update(ctx context.Context, workspaceID, taskID uuid.UUID, params UpdateTaskParams) (*domain.Task, error)
	SetStatus(ctx context.Context, workspaceID, taskID uuid.UUID, status string) (*domain.Task, error)
	SetPinned(ctx context.Context, workspaceID, taskID uuid.UUID, pinned bool) (*domain.Task, error)

	// List returns the workspace's tasks newest first. An empty statusFilter
	// returns every status.
	List(ctx context.Context, workspaceID uuid.UUID, statusFilter string) ([]*domain.Task, error)
}

type taskServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskService creates a TaskService.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("tasks cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_service")),
		now:    time.Now,
	}, nil
}

// Create validates the input, rejects a second task for the same voice note
// and inserts an ACTIVE task.
func (s *taskServiceImpl) Create(
	ctx context.Context,
	workspaceID uuid.UUID,
	params CreateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	priority := domain.DefaultPriority
	if params.Priority != nil {
		priority = *params.Priority
	}
	dueDate, err := domain.ParseDueDate(params.DueDate)
	if err != nil {
		return nil, err
	}
	task, err := domain.NewTask(workspaceID, params.Title, params.Notes, dueDate, priority, params.SourceVoiceNoteID)
	if err != nil {
		return nil, err
	}

	if task.SourceVoiceNoteID != nil {
		existing, err := s.tasks.FindBySourceVoiceNote(ctx, workspaceID, *task.SourceVoiceNoteID)
		switch {
		case err == nil:
			return nil, sourceConflict(existing.ID)
		case !errors.Is(err, store.ErrTaskNotFound):
			log.Error("failed to check source voice note", slog.String("error", err.Error()))
			return nil, NewServiceError("create_task", "failed to check source voice note", err)
		}
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		if errors.Is(err, store.ErrSourceVoiceNoteTaken) {
			// Lost the race to a concurrent create; report the winner.
			existing, findErr := s.tasks.FindBySourceVoiceNote(ctx, workspaceID, *task.SourceVoiceNoteID)
			if findErr == nil {
				return nil, sourceConflict(existing.ID)
			}
			return nil, domain.NewConflictError("task", uuid.Nil, "a task already exists for this voice note")
		}
		log.Error("failed to save task", slog.String("error", err.Error()))
		return nil, NewServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("workspace_id", workspaceID.String()))
	return task, nil
}

func sourceConflict(existingID uuid.UUID) error {
	return domain.NewConflictError("task", existingID, "a task already exists for this voice note")
}

// Update applies the fields present in params. Input is validated before the
// transaction starts.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	workspaceID, taskID uuid.UUID,
	params UpdateTaskParams,
) (*domain.Task, error) {
	if params.Title != nil && strings.TrimSpace(*params.Title) == "" {
		return nil, domain.NewValidationError("title", "cannot be empty", domain.ErrEmptyTitle)
	}
	if params.Priority != nil {
		if err := domain.ValidatePriority(*params.Priority); err != nil {
			return nil, err
		}
	}
	var dueDate *time.Time
	if params.DueDateSet && params.DueDate != nil {
		parsed, err := domain.ParseDueDate(*params.DueDate)
		if err != nil {
			return nil, err
		}
		dueDate = parsed
	}

	return s.mutate(ctx, "update_task", workspaceID, taskID, func(task *domain.Task) error {
		if params.Title != nil {
			if err := task.SetTitle(*params.Title); err != nil {
				return err
			}
		}
		if params.NotesSet {
			task.SetNotes(params.Notes)
		}
		if params.DueDateSet {
			task.SetDueDate(dueDate)
		}
		if params.Priority != nil {
			return task.SetPriority(*params.Priority)
		}
		return nil
	})
}

// SetStatus moves the task to the named status; deletedAt follows the status.
func (s *taskServiceImpl) SetStatus(
	ctx context.Context,
	workspaceID, taskID uuid.UUID,
	status string,
) (*domain.Task, error) {
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, "set_task_status", workspaceID, taskID, func(task *domain.Task) error {
		return task.SetStatus(parsed, s.now())
	})
}

// SetPinned pins or unpins the task.
func (s *taskServiceImpl) SetPinned(
	ctx context.Context,
	workspaceID, taskID uuid.UUID,
	pinned bool,
) (*domain.Task, error) {
	return s.mutate(ctx, "set_task_pinned", workspaceID, taskID, func(task *domain.Task) error {
		task.SetPinned(pinned, s.now())
		return nil
	})
}

// mutate loads the task under a row lock, applies fn and writes it back in
// one transaction.
func (s *taskServiceImpl) mutate(
	ctx context.Context,
	operation string,
	workspaceID, taskID uuid.UUID,
	fn func(task *domain.Task) error,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.tasks.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.tasks.WithTx(tx)

		task, err := txStore.GetForUpdate(ctx, workspaceID, taskID)
		if err != nil {
			return err
		}
		if err := fn(task); err != nil {
			return err
		}
		if err := txStore.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) && !errors.Is(err, domain.ErrValidation) {
			log.Error("task mutation failed",
				slog.String("operation", operation),
				slog.String("task_id", taskID.String()),
				slog.String("error", err.Error()))
		}
		return nil, NewServiceError(operation, "failed to update task", err)
	}

	log.Debug("task updated",
		slog.String("operation", operation),
		slog.String("task_id", taskID.String()))
	return updated, nil
}

// List implements TaskService.
func (s *taskServiceImpl) List(
	ctx context.Context,
	workspaceID uuid.UUID,
	statusFilter string,
) ([]*domain.Task, error) {
	var status *domain.Status
	if strings.TrimSpace(statusFilter) != "" {
		parsed, err := domain.ParseStatus(statusFilter)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}

	tasks, err := s.tasks.List(ctx, workspaceID, status)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("workspace_id", workspaceID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// SortByPriorityScore orders tasks by descending priority score at now.
// Ties keep their existing order.
func SortByPriorityScore(tasks []*domain.Task, now time.Time) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].PriorityScore(now) > tasks[j].PriorityScore(now)
	})
}
