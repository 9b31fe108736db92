package main

import (
	"bufio"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/quillpost/quillpost/password"
)

// NewHashPasswordCmd prints a verifier for a plaintext taken from the
// argument or, when absent, the first line of stdin. It needs no database.
func NewHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [PASSWORD]",
		Short: "Print the stored verifier for a password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var plaintext string
			if len(args) == 1 {
				plaintext = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return oops.Code("NO_PASSWORD").Errorf("no password given")
				}
				plaintext = strings.TrimRight(line, "\r\n")
			}

			scheme, err := password.ParseScheme(cfg.Auth.Password.Scheme)
			if err != nil {
				return err
			}
			codec, err := password.New(scheme, cfg.Auth.Password.Argon2)
			if err != nil {
				return err
			}
			verifier, err := codec.Hash(plaintext)
			if err != nil {
				return err
			}
			cmd.Println(verifier)
			return nil
		},
	}
}
