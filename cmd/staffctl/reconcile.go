package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iqueue/staffing/internal/ledger"
	"github.com/iqueue/staffing/internal/repository"
	"github.com/iqueue/staffing/pkg/database"
)

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute every shifts_worked counter from linked shifts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)

			fixes, err := ledger.Reconcile(cmd.Context(), repository.NewStore(db))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range fixes {
				fmt.Fprintf(out, "%s\t%s\t%d -> %d\n", c.UserID, c.Name, c.Before, c.After)
			}
			fmt.Fprintf(out, "%d counter(s) corrected\n", len(fixes))
			return nil
		},
	}
}
