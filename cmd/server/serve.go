package main

import (
	"context"
	"fmt"

	"github.com/phrazzld/voicetask-api/internal/platform/postgres"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, migrate)
		},
	}

	cmd.Flags().Int("port", 0, "HTTP listen port (overrides server.port)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	cobra.CheckErr(opts.viper.BindPFlag("server.port", cmd.Flags().Lookup("port")))

	return cmd
}

func runServe(ctx context.Context, opts *rootOptions, migrate bool) error {
	cfg, logger, err := opts.setup()
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}

	if migrate {
		if err := postgres.RunMigrations(ctx, db, logger, "up"); err != nil {
			_ = db.Close()
			return err
		}
	}

	app, err := newApplication(ctx, cfg, logger, db, afero.NewOsFs())
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
