package resolver

import (
	"productcatalog/pkg/models"
)

// AuditReport lists the products whose image does not match any file.
type AuditReport struct {
	Files      []string              `json:"files"`
	Missing    []models.MissingImage `json:"missing"`
	Count      int                   `json:"count"`
	AllMatched bool                  `json:"all_matched"`
}

// RepairResult is the rewritten catalog plus the per-product report.
type RepairResult struct {
	Products  []models.Product     `json:"-"`
	Report    []models.ReportEntry `json:"report"`
	Processed int                  `json:"processed"`
	Fallbacks int                  `json:"fallbacks"`
}

// Audit reports every product whose normalized image basename is empty or
// absent from the store. It never mutates products.
func Audit(products []models.Product, filenames []string) AuditReport {
	files := Fold(filenames)
	known := make(map[string]struct{}, len(files))
	for _, f := range files {
		known[key(f)] = struct{}{}
	}

	rep := AuditReport{Files: files, Missing: []models.MissingImage{}}
	for _, p := range products {
		k := key(p.Image)
		if _, ok := known[k]; k != "" && ok {
			continue
		}
		rep.Missing = append(rep.Missing, models.MissingImage{ID: p.ID, Name: p.Name, Image: p.Image})
	}
	rep.Count = len(rep.Missing)
	rep.AllMatched = rep.Count == 0
	return rep
}

// Repair resolves every product against filenames. The returned products
// differ from the input only in Image; the report is in input order.
func Repair(products []models.Product, filenames []string) RepairResult {
	files := Fold(filenames)
	idx := BuildIndex(files)

	res := RepairResult{
		Products: make([]models.Product, 0, len(products)),
		Report:   make([]models.ReportEntry, 0, len(products)),
	}
	for _, p := range products {
		r := Resolve(p, files, idx)

		entry := models.ReportEntry{ID: p.ID, Name: p.Name, Before: p.Image, After: r.Chosen, Note: r.Note}
		if r.Note == NoteFallback {
			res.Fallbacks++
		}

		p.Image = r.Chosen
		res.Products = append(res.Products, p)
		res.Report = append(res.Report, entry)
	}
	res.Processed = len(res.Products)
	return res
}
