package main

import (
	"fmt"

	"github.com/fintrack/finance-tracker/config"
	"github.com/fintrack/finance-tracker/repositories/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Long:  `Creates the users table and its unique email index if they do not exist.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := initLogger()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			cfg, err := config.New(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			db, err := postgres.NewDB(cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if err := db.InitSchema(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			logger.Info("schema is up to date")
			return nil
		},
	}
}
