package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/quillpost/quillpost/internal/store/postgres"
	"github.com/quillpost/quillpost/password"
)

// seedPassword is the plaintext every seeded user can log in with.
const seedPassword = "1234"

func NewSeedCmd() *cobra.Command {
	var opts postgres.SeedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Bulk-load users and messages for load testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Users < 0 || opts.MessagesPerUser < 0 {
				return oops.Code("INVALID_SEED").Errorf("--users and --messages must be >= 0")
			}
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			scheme, err := password.ParseScheme(cfg.Auth.Password.Scheme)
			if err != nil {
				return err
			}
			codec, err := password.New(scheme, cfg.Auth.Password.Argon2)
			if err != nil {
				return err
			}
			// One verifier for all seeded users keeps argon2id seeding fast.
			opts.PasswordHash, err = codec.Hash(seedPassword)
			if err != nil {
				return err
			}

			pool, err := postgres.Open(cmd.Context(), postgres.PoolConfig{
				DSN:            cfg.Database.DSN(),
				MinConns:       cfg.Database.MinConns,
				MaxConns:       cfg.Database.MaxConns,
				AcquireTimeout: cfg.Database.AcquireTimeout,
				ConnectRetries: cfg.Database.ConnectRetries,
			})
			if err != nil {
				return err
			}
			defer pool.Close()

			res, err := postgres.Seed(cmd.Context(), pool, opts)
			if err != nil {
				return err
			}
			logger.Info("seed complete", "users", res.Users, "messages", res.Messages, "prefix", opts.Prefix)
			cmd.Printf("seeded %d users and %d messages\n", res.Users, res.Messages)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Users, "users", 1000, "number of users to create")
	cmd.Flags().IntVar(&opts.MessagesPerUser, "messages", 10, "messages per user")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "user", "login prefix; logins are <prefix>1..<prefix>N")
	return cmd
}
