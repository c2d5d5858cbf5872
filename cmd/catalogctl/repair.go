package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"productcatalog/internal/catalog"
	"productcatalog/internal/history"
	"productcatalog/internal/images"
	"productcatalog/internal/report"
)

func newRepairCmd(a *app) *cobra.Command {
	var (
		dryRun bool
		record bool
	)

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Rewrite every product image to a file that exists, backing up the catalog first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()

			res, err := catalog.RepairFile(catalog.RepairOptions{
				Path:       a.cfg.CatalogPath,
				BackupPath: a.cfg.BackupPath,
				DryRun:     dryRun,
				ListImages: func() ([]string, error) { return images.ListDir(a.cfg.ImagesDir) },
			})
			if err != nil {
				return err
			}

			a.logger.Info("repair finished",
				zap.String("catalog", a.cfg.CatalogPath),
				zap.Int("products", res.Processed),
				zap.Int("fallbacks", res.Fallbacks),
				zap.Bool("dry_run", dryRun),
			)

			var runID string
			if record {
				run, err := recordRun(cmd.Context(), a, history.Run{
					CatalogPath: a.cfg.CatalogPath,
					BackupPath:  a.cfg.BackupPath,
					StartedAt:   started,
					Products:    res.Processed,
					Fallbacks:   res.Fallbacks,
					DryRun:      dryRun,
					Entries:     res.Report,
				})
				if err != nil {
					return fmt.Errorf("catalog repaired but history not recorded: %w", err)
				}
				runID = run.ID
			}

			out := cmd.OutOrStdout()
			if a.format != report.FormatTable {
				return report.Write(out, a.format, report.Repair(res))
			}

			if dryRun {
				fmt.Fprintf(out, "Dry run: %d products checked, %d would fall back. Catalog not modified.\n", res.Processed, res.Fallbacks)
			} else {
				fmt.Fprintf(out, "Updated %d products. Backup at %s\n", res.Processed, a.cfg.BackupPath)
			}
			if err := report.Write(out, report.FormatTable, report.Repair(res)); err != nil {
				return err
			}
			if runID != "" {
				fmt.Fprintf(out, "Recorded run %s\n", runID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve and report without writing the catalog or backup")
	cmd.Flags().BoolVar(&record, "history", false, "record the run in the history database")
	return cmd
}

func recordRun(ctx context.Context, a *app, run history.Run) (history.Run, error) {
	repo, closeDB, err := openHistory(a)
	if err != nil {
		return history.Run{}, err
	}
	defer closeDB()

	return repo.Record(ctx, run)
}
