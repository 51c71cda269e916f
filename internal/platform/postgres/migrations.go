package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
)

// MigrationTableName is the table goose records applied versions in.
const MigrationTableName = "schema_migrations"

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationCommands lists the commands RunMigrations accepts.
var MigrationCommands = []string{"up", "down", "reset", "status", "version", "up-to", "down-to"}

// slogGooseLogger adapts goose.Logger to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level and does not exit; RunMigrations returns the error instead.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// RunMigrations applies the embedded schema migrations to db.
// up-to and down-to take the target version as their single argument.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger, command string, args ...string) error {
	if logger == nil {
		logger = slog.Default()
	}
	migrationLogger := logger.With(
		slog.String("correlation_id", uuid.New().String()),
		slog.String("component", "migrations"),
		slog.String("command", command),
	)

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	goose.SetTableName(MigrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	start := time.Now()
	migrationLogger.Info("starting migration operation")

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, migrationsDir)
	case "down":
		err = goose.DownContext(ctx, db, migrationsDir)
	case "reset":
		err = goose.ResetContext(ctx, db, migrationsDir)
	case "status":
		err = goose.StatusContext(ctx, db, migrationsDir)
	case "version":
		err = goose.VersionContext(ctx, db, migrationsDir)
	case "up-to", "down-to":
		var version int64
		version, err = parseTargetVersion(args)
		if err != nil {
			return err
		}
		if command == "up-to" {
			err = goose.UpToContext(ctx, db, migrationsDir, version)
		} else {
			err = goose.DownToContext(ctx, db, migrationsDir, version)
		}
	default:
		return fmt.Errorf("unknown migration command %q (valid: %v)", command, MigrationCommands)
	}

	if err != nil {
		migrationLogger.Error("migration failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	migrationLogger.Info("migration operation completed", slog.Duration("duration", time.Since(start)))
	return nil
}

func parseTargetVersion(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one target version, got %d arguments", len(args))
	}
	var version int64
	if _, err := fmt.Sscan(args[0], &version); err != nil || version < 0 {
		return 0, fmt.Errorf("invalid target version %q", args[0])
	}
	return version, nil
}
