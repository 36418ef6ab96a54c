// cmd/board/migrate.go
package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

func newMigrateCmd(loadConfig configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the job type schema in the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			repo, closeRepo, err := openRepository(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeRepo() }()

			m, ok := repo.(migrator)
			if !ok {
				logger.Info("store has no schema to migrate", "store_driver", cfg.StoreDriver)
				return nil
			}
			if err := m.Migrate(ctx); err != nil {
				return err
			}
			logger.Info("migration complete", "store_driver", cfg.StoreDriver)
			return nil
		},
	}
}
