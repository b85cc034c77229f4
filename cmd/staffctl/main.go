// Command staffctl runs maintenance tasks against the staffing database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iqueue/staffing/pkg/config"
	"github.com/iqueue/staffing/pkg/database"
	"github.com/iqueue/staffing/pkg/logger"
)

func main() {
	defer logger.Sync()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "staffctl",
		Short:         "Maintenance commands for the iQueue staffing database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd(), newReconcileCmd())
	return root
}

// connect loads configuration, initialises the logger and opens the database.
func connect(ctx context.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if _, err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, nil, err
	}
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, database.DefaultOptions(cfg.AppEnv))
	if err != nil {
		logger.L().Error("failed to connect to database", zap.Error(err))
		return nil, nil, err
	}
	return cfg, db, nil
}
