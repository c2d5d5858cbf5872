package catalog

import (
	"productcatalog/internal/resolver"
)

type RepairOptions struct {
	Path       string
	BackupPath string   // defaults to BackupPath(Path)
	Filenames  []string // image store listing
	DryRun     bool

	// ListImages, when set, replaces Filenames and runs only after the
	// catalog has been read.
	ListImages func() ([]string, error)
}

// RepairFile resolves every product in the catalog file and, unless DryRun
// is set, backs up the original bytes before overwriting the catalog. A
// failed backup leaves the catalog untouched.
func RepairFile(opts RepairOptions) (resolver.RepairResult, error) {
	products, original, err := LoadFile(opts.Path)
	if err != nil {
		return resolver.RepairResult{}, err
	}

	names := opts.Filenames
	if opts.ListImages != nil {
		if names, err = opts.ListImages(); err != nil {
			return resolver.RepairResult{}, err
		}
	}

	res := resolver.Repair(products, names)
	if opts.DryRun {
		return res, nil
	}

	backup := opts.BackupPath
	if backup == "" {
		backup = BackupPath(opts.Path)
	}
	if err := WriteWithBackup(opts.Path, backup, original, res.Products); err != nil {
		return resolver.RepairResult{}, err
	}
	return res, nil
}
