// Package main implements the voicetask-api command: the HTTP server for
// voice notes and tasks, plus the migrate and purge maintenance commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/voicetask-api/internal/config"
	"github.com/phrazzld/voicetask-api/internal/platform/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newRootOptions()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions carries state shared by every subcommand.
type rootOptions struct {
	configFile string
	viper      *viper.Viper
}

func newRootOptions() *rootOptions {
	return &rootOptions{viper: viper.New()}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "voicetask-api",
		Short:         "Voice notes and tasks API server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "",
		"path to a config file (default ./config.yaml when present)")

	serve := newServeCmd(opts)
	root.AddCommand(serve)
	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newPurgeCmd(opts))

	// Running without a subcommand serves.
	root.Flags().AddFlagSet(serve.Flags())
	root.RunE = serve.RunE

	return root
}

// loadConfig reads configuration, applying any bound command-line flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(o.viper, o.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// setup loads configuration and installs the JSON logger.
func (o *rootOptions) setup() (*config.Config, *slog.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))
	if cfg.Cron.Secret == "" {
		l.Warn("cron secret is not configured; the purge endpoint will refuse requests")
	}

	return cfg, l, nil
}
