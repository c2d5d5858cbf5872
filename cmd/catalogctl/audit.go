package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"productcatalog/internal/catalog"
	"productcatalog/internal/images"
	"productcatalog/internal/report"
	"productcatalog/internal/resolver"
)

func newAuditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "List products whose image matches no file in the image directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, _, err := catalog.LoadFile(a.cfg.CatalogPath)
			if err != nil {
				return err
			}
			names, err := images.ListDir(a.cfg.ImagesDir)
			if err != nil {
				return err
			}

			rep := resolver.Audit(products, names)
			a.logger.Debug("audit finished", zap.Int("products", len(products)), zap.Int("missing", rep.Count))

			if a.format != report.FormatTable {
				return report.Write(cmd.OutOrStdout(), a.format, rep)
			}
			return writeAuditText(cmd.OutOrStdout(), rep)
		},
	}
}

func writeAuditText(w io.Writer, rep resolver.AuditReport) error {
	fmt.Fprintln(w, "Files in images folder:")
	for _, f := range rep.Files {
		fmt.Fprintln(w, f)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Products with missing images:")
	for _, m := range rep.Missing {
		id := "?"
		if m.ID != 0 {
			id = strconv.Itoa(m.ID)
		}
		name := m.Name
		if name == "" {
			name = "?"
		}
		fmt.Fprintf(w, "- id:%s name:%s image field:%s\n", id, name, m.Image)
	}

	if rep.AllMatched {
		_, err := fmt.Fprintln(w, "All product image fields match files.")
		return err
	}
	return nil
}
