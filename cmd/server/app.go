package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	apiMiddleware "github.com/phrazzld/voicetask-api/internal/api/middleware"
	"github.com/phrazzld/voicetask-api/internal/config"
	"github.com/phrazzld/voicetask-api/internal/platform/filestore"
	"github.com/phrazzld/voicetask-api/internal/platform/postgres"
	"github.com/phrazzld/voicetask-api/internal/redact"
	"github.com/phrazzld/voicetask-api/internal/service"
	"github.com/phrazzld/voicetask-api/internal/service/auth"
	"github.com/phrazzld/voicetask-api/internal/task"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

// application holds the shared dependencies of the server and owns their
// cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	jwtService        auth.JWTService
	userService       service.UserService
	workspaceResolver service.WorkspaceResolver
	taskService       service.TaskService
	voiceNoteService  service.VoiceNoteService
	purgeService      service.PurgeService

	authLimiter apiMiddleware.Limiter
	scheduler   *task.Scheduler
}

// newApplication builds every store, service and background job on top of
// an established database connection. fs backs the audio file store.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	fs afero.Fs,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	userStore := postgres.NewPostgresUserStore(db, logger)
	workspaceStore := postgres.NewPostgresWorkspaceStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	voiceNoteStore := postgres.NewPostgresVoiceNoteStore(db, logger)

	audioStore, err := filestore.NewAudioStore(fs, cfg.Storage.AudioDir, cfg.Storage.PublicBasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio store: %w", err)
	}

	app.userService = service.NewUserService(
		userStore,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.NewBcryptVerifier(),
		logger,
	)

	if app.workspaceResolver, err = service.NewWorkspaceResolver(userStore, workspaceStore, logger); err != nil {
		return nil, fmt.Errorf("failed to create workspace resolver: %w", err)
	}
	if app.taskService, err = service.NewTaskService(taskStore, logger); err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}
	if app.voiceNoteService, err = service.NewVoiceNoteService(voiceNoteStore, audioStore, logger); err != nil {
		return nil, fmt.Errorf("failed to create voice note service: %w", err)
	}
	if app.purgeService, err = service.NewPurgeService(taskStore, cfg.Retention.Days, logger); err != nil {
		return nil, fmt.Errorf("failed to create purge service: %w", err)
	}

	app.authLimiter, app.redis, err = newAuthLimiter(ctx, cfg.RateLimit, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Retention.PurgeInterval > 0 {
		app.scheduler, err = task.NewScheduler(
			task.DefaultSchedulerConfig(cfg.Retention.PurgeInterval),
			logger,
			task.NewPurgeJob(app.purgeService, logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create purge scheduler: %w", err)
		}
	}

	logger.Info("application initialized")
	return app, nil
}

// newAuthLimiter returns a Redis sliding-window limiter when a Redis URL is
// configured and an in-memory token bucket otherwise. The returned client is
// nil for the in-memory limiter.
func newAuthLimiter(
	ctx context.Context,
	cfg config.RateLimitConfig,
	logger *slog.Logger,
) (apiMiddleware.Limiter, *redis.Client, error) {
	if cfg.RedisURL == "" {
		logger.Info("using in-memory rate limiter",
			slog.Float64("requests_per_second", cfg.RequestsPerSecond),
			slog.Int("burst", cfg.Burst))
		return apiMiddleware.NewMemoryLimiter(cfg.RequestsPerSecond, cfg.Burst), nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid rate limit redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// Requests fail open while Redis is unreachable.
		logger.Warn("rate limit redis is unreachable",
			slog.String("error", redact.Error(err)))
	}

	logger.Info("using redis rate limiter",
		slog.Int("limit", cfg.Burst),
		slog.Duration("window", window))
	return apiMiddleware.NewRedisLimiter(client, cfg.Burst, window), client, nil
}

// Run starts background jobs and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if app.scheduler != nil {
		if err := app.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start purge scheduler: %w", err)
		}
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background work, then releases connections.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", redact.Error(err)))
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", redact.Error(err)))
		}
	}

	app.logger.Info("application shutdown completed")
}
