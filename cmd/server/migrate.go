package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/telehealth-core/internal/config"
	"github.com/iliyamo/telehealth-core/internal/database"
	"github.com/iliyamo/telehealth-core/internal/logs"
)

func newMigrateCommand() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the accounts, messages and prescriptions tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logs.New(cfg)

			db, dialect, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := database.Migrate(ctx, db, dialect); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("migrations applied", slog.String("dialect", dialect))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "maximum time for all migrations")
	return cmd
}
