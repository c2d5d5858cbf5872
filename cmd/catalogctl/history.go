package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"productcatalog/internal/history"
	"productcatalog/internal/report"
	"productcatalog/internal/resolver"
	"productcatalog/pkg/database"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded repair runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := openHistory(a)
			if err != nil {
				return err
			}
			defer closeDB()

			runs, err := repo.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), a.format, report.Runs(runs))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list (1-100)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-product report of one repair run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := openHistory(a)
			if err != nil {
				return err
			}
			defer closeDB()

			run, err := repo.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}

			out := cmd.OutOrStdout()
			if a.format != report.FormatTable {
				return report.Write(out, a.format, run)
			}
			if err := report.Write(out, report.FormatTable, report.Runs{*run}); err != nil {
				return err
			}
			return report.Write(out, report.FormatTable, report.Repair(resolver.RepairResult{
				Report:    run.Entries,
				Processed: run.Products,
				Fallbacks: run.Fallbacks,
			}))
		},
	})

	return cmd
}

func openHistory(a *app) (*history.Repo, func(), error) {
	db, err := database.OpenAndMigrate(database.Config{Path: a.cfg.HistoryDB})
	if err != nil {
		return nil, nil, err
	}
	return history.NewRepo(db), func() { _ = db.Close() }, nil
}
