package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/config"
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/security"
)

func newTokenCmd(opts *options) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token signed with the server's JWT secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			manager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.OperatorTokenTTL)
			token, expiresAt, err := manager.GenerateOperatorToken(name)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "operator", "operator name recorded in the token")
	return cmd
}
