package main

import (
	"context"
	"fmt"
	"io"

	"github.com/phrazzld/voicetask-api/internal/platform/postgres"
	"github.com/phrazzld/voicetask-api/internal/service"
	"github.com/spf13/cobra"
)

func newPurgeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Permanently remove deleted tasks past the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup()
			if err != nil {
				return err
			}

			db, err := openDatabase(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			purge, err := service.NewPurgeService(
				postgres.NewPostgresTaskStore(db, logger),
				cfg.Retention.Days,
				logger,
			)
			if err != nil {
				return err
			}
			return runPurge(cmd.Context(), cmd.OutOrStdout(), purge)
		},
	}
}

func runPurge(ctx context.Context, out io.Writer, purge service.PurgeService) error {
	deleted, err := purge.Purge(ctx)
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	_, err = fmt.Fprintf(out, "deleted %d tasks\n", deleted)
	return err
}
