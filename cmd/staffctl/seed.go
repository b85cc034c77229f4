package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/iqueue/staffing/internal/repository"
	"github.com/iqueue/staffing/internal/services"
	"github.com/iqueue/staffing/pkg/database"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load users and shifts from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			fixture, err := services.ParseFixture(f)
			if err != nil {
				return err
			}

			cfg, db, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)

			store := repository.NewStore(db)
			shifts := services.NewShiftService(store, services.WithLocation(cfg.Location()))
			report, err := services.NewImportService(store, shifts, cfg.DefaultUserPassword).Seed(cmd.Context(), fixture)
			if report != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				_ = enc.Encode(report)
			}
			return err
		},
	}
}
