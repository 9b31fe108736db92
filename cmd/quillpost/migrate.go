package main

import (
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/quillpost/quillpost/internal/store/postgres"
)

// migrator is the part of *postgres.Migrator the subcommands drive.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Close() error
}

var newMigrator = func(dsn string) (migrator, error) {
	return postgres.NewMigrator(dsn)
}

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printVersion(cmd, m)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration (drops all tables)",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
				if err := m.Down(); err != nil {
					return err
				}
				return printVersion(cmd, m)
			}),
		},
		&cobra.Command{
			Use:   "steps N",
			Short: "Apply N migrations; roll back with `steps -- -N`",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(cmd *cobra.Command, m migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil || n == 0 {
					return oops.Code("INVALID_STEPS").Errorf("steps must be a non-zero integer, got %q", args[0])
				}
				if err := m.Steps(n); err != nil {
					return err
				}
				return printVersion(cmd, m)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
				return printVersion(cmd, m)
			}),
		},
	)
	return cmd
}

func withMigrator(fn func(*cobra.Command, migrator, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		m, err := newMigrator(cfg.Database.DSN())
		if err != nil {
			return err
		}
		defer func() { _ = m.Close() }()
		return fn(cmd, m, args)
	}
}

func printVersion(cmd *cobra.Command, m migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		cmd.Printf("schema version %d (dirty)\n", v)
		return nil
	}
	cmd.Printf("schema version %d\n", v)
	return nil
}
