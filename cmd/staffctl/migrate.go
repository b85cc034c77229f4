package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iqueue/staffing/internal/repository"
	"github.com/iqueue/staffing/pkg/database"
	"github.com/iqueue/staffing/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := repository.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			logger.L().Info("migrations completed")
			return nil
		},
	}
}
