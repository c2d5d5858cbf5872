package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"productcatalog/internal/catalog"
)

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, _, err := catalog.LoadFile(a.cfg.CatalogPath)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return catalog.WriteCSV(cmd.OutOrStdout(), products)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()

			if err := catalog.WriteCSV(f, products); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}

			a.logger.Info("exported catalog", zap.String("out", out), zap.Int("products", len(products)))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s\n", len(products), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output CSV path (default stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Replace the catalog with the products in a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			products, err := catalog.ReadCSV(f)
			if err != nil {
				return err
			}

			_, original, err := catalog.LoadFile(a.cfg.CatalogPath)
			switch {
			case err == nil:
				err = catalog.WriteWithBackup(a.cfg.CatalogPath, a.cfg.BackupPath, original, products)
			case errors.Is(err, catalog.ErrCatalogNotFound):
				err = catalog.WriteFile(a.cfg.CatalogPath, products)
			case errors.Is(err, catalog.ErrCatalogParse):
				// keep the unparseable file as the backup
				if original, err = os.ReadFile(a.cfg.CatalogPath); err == nil {
					err = catalog.WriteWithBackup(a.cfg.CatalogPath, a.cfg.BackupPath, original, products)
				}
			}
			if err != nil {
				return err
			}

			a.logger.Info("imported catalog", zap.String("from", args[0]), zap.Int("products", len(products)))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products into %s\n", len(products), a.cfg.CatalogPath)
			return nil
		},
	}
}
