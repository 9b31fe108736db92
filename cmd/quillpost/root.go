package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quillpost/quillpost/internal/config"
	"github.com/quillpost/quillpost/internal/logging"
)

const serviceName = "quillpost"

// NewRootCmd creates the root command. Every subcommand shares --config and
// the config override flags.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "quillpost",
		Short:         "quillpost - users, sessions and messages over HTTP",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().String("config", "", "YAML config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewHashPasswordCmd())

	return cmd
}

// loadConfig reads the layered configuration for cmd and installs the
// default logger it describes.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := logging.Setup(serviceName, version, cfg.Log.Format, cfg.Log.Level, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return cfg, logger, nil
}
