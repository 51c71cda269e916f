package main

import (
	"fmt"
	"slices"

	"github.com/phrazzld/voicetask-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|reset|status|version|up-to N|down-to N]",
		Short: "Apply or inspect database schema migrations",
		Long: `Apply or inspect the embedded database schema migrations.

Without arguments all pending migrations are applied.

Examples:
  voicetask-api migrate
  voicetask-api migrate status
  voicetask-api migrate down-to 2`,
		Args: validateMigrateArgs,
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

			command, rest := migrationCommand(args)
			return postgres.RunMigrations(cmd.Context(), db, logger, command, rest...)
		},
	}
}

// migrationCommand splits args into the goose command and its arguments.
func migrationCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "up", nil
	}
	return args[0], args[1:]
}

func validateMigrateArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	command := args[0]
	if !slices.Contains(postgres.MigrationCommands, command) {
		return fmt.Errorf("unknown migration command %q (valid: %v)", command, postgres.MigrationCommands)
	}
	switch command {
	case "up-to", "down-to":
		if len(args) != 2 {
			return fmt.Errorf("%s requires a target version", command)
		}
	default:
		if len(args) != 1 {
			return fmt.Errorf("%s takes no arguments", command)
		}
	}
	return nil
}
