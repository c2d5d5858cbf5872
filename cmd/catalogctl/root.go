package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"productcatalog/internal/logging"
	"productcatalog/internal/report"
	"productcatalog/pkg/utils"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configFile string
	output     string

	cfg    utils.Config
	format report.Format
	logger *zap.Logger
}

// flagKeys maps persistent flags onto config keys so a set flag wins over
// env and config file values.
var flagKeys = map[string]string{
	"catalog":    "catalog_path",
	"images":     "images_dir",
	"backup":     "backup_path",
	"history-db": "history_db",
	"log-level":  "log_level",
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Audit and repair product image references",
		Long: `catalogctl maintains the product catalog served by the API server.

It checks every product's image field against the image directory, rewrites
unresolvable references (keeping a backup of the original catalog), keeps a
history of repair runs and converts the catalog to and from CSV.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./.productcatalog.yaml or ~/.productcatalog.yaml)")
	pf.String("catalog", "", "catalog JSON file (default products.json)")
	pf.String("images", "", "image directory (default public/images)")
	pf.String("backup", "", "backup file written before the catalog is overwritten (default <catalog>.bak)")
	pf.String("history-db", "", "SQLite file for repair history (default ~/.productcatalog/history.db)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.StringVarP(&a.output, "output", "o", "", "output format: table, json, yaml (default table on a terminal, json otherwise)")

	cmd.AddCommand(
		newAuditCmd(a),
		newRepairCmd(a),
		newHistoryCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newWatchCmd(a),
	)

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	v, err := utils.NewViper(a.configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}

	cfg, err := utils.FromViper(v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	f, err := report.ParseFormat(a.output)
	if err != nil {
		return err
	}
	a.format = report.DetectFormat(f)

	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = logger
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
