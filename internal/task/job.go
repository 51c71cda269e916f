package task

import (
	"context"
	"log/slog"

	"github.com/phrazzld/voicetask-api/internal/service"
)

// Job is a unit of periodic background work.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Run performs one pass of the job.
	Run(ctx context.Context) error
}

// JobTypePurgeDeleted names the retention purge job.
const JobTypePurgeDeleted = "purge_deleted_tasks"

// PurgeJob adapts a PurgeService to the Job interface.
type PurgeJob struct {
	purge  service.PurgeService
	logger *slog.Logger
}

// NewPurgeJob creates a PurgeJob.
func NewPurgeJob(purge service.PurgeService, logger *slog.Logger) *PurgeJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &PurgeJob{purge: purge, logger: logger}
}

// Name implements Job.
func (j *PurgeJob) Name() string {
	return JobTypePurgeDeleted
}

// Run implements Job.
func (j *PurgeJob) Run(ctx context.Context) error {
	deleted, err := j.purge.Purge(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		j.logger.Info("scheduled purge removed tasks", slog.Int64("deleted_count", deleted))
	}
	return nil
}
