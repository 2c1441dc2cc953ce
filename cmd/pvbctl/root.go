package main

import (
	"context"
	"encoding/json"
	"io"

	"pvb-admin/pkg/config"
	"pvb-admin/pkg/database/postgresql"
	applogger "pvb-admin/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what every subcommand needs; it is filled in PersistentPreRun.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:          "pvbctl",
		Short:        "Operator tools for the PVB admin backend",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.New()
			a.logger = applogger.NewLogger(a.cfg.Log.Level, a.cfg.Log.File)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	cmd.AddCommand(newMigrateCmd(a), newLinkIdentitiesCmd(a), newTokenCmd(a))
	return cmd
}

func (a *app) connect(ctx context.Context) (*pgxpool.Pool, error) {
	return postgresql.ConnectDB(ctx, a.cfg.Postgres.DSN, a.logger)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
