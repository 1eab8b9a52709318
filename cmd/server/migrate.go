package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/yukikurage/sprint-tracker/internal/config"
	"github.com/yukikurage/sprint-tracker/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			setupLogger(cfg)

			if err := database.Connect(cfg); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			if err := database.Migrate(); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			slog.Info("Migrations applied", slog.String("driver", cfg.DBDriver))
			return nil
		},
	}
}
