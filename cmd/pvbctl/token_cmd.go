package main

import (
	"fmt"

	"pvb-admin/pkg/service"

	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	var email, name, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed identity token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := service.NewJWTService(a.cfg.JWT.SecretKey, a.cfg.JWT.TokenTTL).GenerateToken(email, name, role)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Identity email (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", "user", "Role claim; 'admin' unlocks /admin")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
