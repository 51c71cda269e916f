package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	// Interval between runs of each job. Must be positive.
	Interval time.Duration

	// RunOnStart runs every job once as soon as the scheduler starts
	// instead of waiting a full interval.
	RunOnStart bool

	// JobTimeout bounds a single run. Zero means no limit beyond Stop.
	JobTimeout time.Duration
}

// DefaultSchedulerConfig returns a SchedulerConfig running jobs every
// interval, starting immediately, with a five minute timeout per run.
func DefaultSchedulerConfig(interval time.Duration) SchedulerConfig {
	return SchedulerConfig{
		Interval:   interval,
		RunOnStart: true,
		JobTimeout: 5 * time.Minute,
	}
}

// Scheduler runs jobs on a fixed interval until stopped. A run that fails
// is reported to the error handler; the next tick runs the job again.
type Scheduler struct {
	jobs       []Job
	config     SchedulerConfig
	logger     *slog.Logger
	errHandler func(job Job, err error)

	mu         sync.Mutex
	started    bool
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewScheduler creates a Scheduler for jobs.
func NewScheduler(config SchedulerConfig, logger *slog.Logger, jobs ...Job) (*Scheduler, error) {
	if config.Interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %s", config.Interval)
	}
	if len(jobs) == 0 {
		return nil, errors.New("scheduler needs at least one job")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "scheduler"))

	return &Scheduler{
		jobs:   jobs,
		config: config,
		logger: logger,
		errHandler: func(job Job, err error) {
			logger.Error("scheduled job failed",
				slog.String("job", job.Name()),
				slog.String("error", err.Error()))
		},
	}, nil
}

// SetErrorHandler replaces the default handler, which logs the failure.
func (s *Scheduler) SetErrorHandler(handler func(job Job, err error)) {
	s.errHandler = handler
}

// Start launches one goroutine per job. It returns an error if the
// scheduler is already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel
	s.started = true

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}

	s.logger.Info("scheduler started",
		slog.Int("job_count", len(s.jobs)),
		slog.Duration("interval", s.config.Interval))
	return nil
}

// Stop cancels running jobs and waits for their goroutines to exit.
// It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.runOnce(ctx, job)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, job)
		}
	}
}

// runOnce runs job and recovers from a panic so one bad run cannot take
// the process down.
func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	if s.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.JobTimeout)
		defer cancel()
	}

	log := s.logger.With(slog.String("job", job.Name()))
	start := time.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
			}
		}()
		return job.Run(ctx)
	}()

	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			log.Debug("job cancelled during shutdown")
			return
		}
		s.errHandler(job, err)
		return
	}
	log.Debug("job completed", slog.Duration("duration", time.Since(start)))
}
