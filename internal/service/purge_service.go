package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/phrazzld/voicetask-api/internal/store"
)

// DefaultRetentionDays is how long a soft-deleted task survives.
const DefaultRetentionDays = 30

// PurgeService permanently removes soft-deleted tasks past the retention window.
type PurgeService interface {
	// Purge returns the number of tasks removed. Running it again right away
	// removes nothing.
	Purge(ctx context.Context) (int64, error)
}

type purgeServiceImpl struct {
	tasks     store.TaskStore
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewPurgeService creates a PurgeService keeping deleted tasks for
// retentionDays, or DefaultRetentionDays when retentionDays is not positive.
func NewPurgeService(tasks store.TaskStore, retentionDays int, logger *slog.Logger) (PurgeService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("tasks cannot be nil")
	}
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &purgeServiceImpl{
		tasks:     tasks,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger.With(slog.String("component", "purge_service")),
		now:       time.Now,
	}, nil
}

// Purge deletes DELETED tasks whose deletedAt is at or before now minus the
// retention window. Tasks restored before the statement runs no longer match
// the status predicate and are kept.
func (s *purgeServiceImpl) Purge(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	cutoff := s.now().UTC().Add(-s.retention)

	deleted, err := s.tasks.PurgeDeleted(ctx, cutoff)
	if err != nil {
		log.Error("failed to purge deleted tasks",
			slog.Time("cutoff", cutoff),
			slog.String("error", err.Error()))
		return 0, NewServiceError("purge_deleted_tasks", "failed to purge deleted tasks", err)
	}

	log.Info("purged deleted tasks",
		slog.Int64("deleted_count", deleted),
		slog.Time("cutoff", cutoff))
	return deleted, nil
}
