package main

// Run database migrations:
//   go run ./cmd/migrate up
//   go run ./cmd/migrate down
//   go run ./cmd/migrate status

import (
	"context"
	"database/sql"
	"os"

	"github.com/spf13/cobra"

	"docchat-backend/internal/shared/config"
	"docchat-backend/internal/shared/storage/db"
	"docchat-backend/internal/shared/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"err": err})
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var databaseURL string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the Postgres schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if databaseURL == "" {
				databaseURL = cfg.DatabaseURL
			}
			return telemetry.Init(cfg.Env)
		},
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (defaults to DATABASE_URL)")

	withDB := func(fn func(context.Context, *sql.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sqlDB, err := db.Connect(ctx, databaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			return fn(ctx, sqlDB)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  withDB(db.RunMigrations),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE:  withDB(db.RollbackMigration),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print migration status",
			Args:  cobra.NoArgs,
			RunE:  withDB(db.MigrationStatus),
		},
	)
	return root
}
