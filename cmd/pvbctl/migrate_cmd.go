package main

import (
	"pvb-admin/pkg/database/postgresql"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the embedded database migrations",
	}
	for _, c := range []struct {
		command postgresql.MigrateCommand
		short   string
	}{
		{postgresql.MigrateUp, "Apply all pending migrations"},
		{postgresql.MigrateDown, "Roll back the latest migration"},
		{postgresql.MigrateStatus, "Print the migration status"},
	} {
		command := c.command
		cmd.AddCommand(&cobra.Command{
			Use:   string(command),
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgresql.Migrate(cmd.Context(), a.cfg.Postgres.DSN, command, a.logger)
			},
		})
	}
	return cmd
}
