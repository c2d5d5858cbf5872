package report

import (
	"strconv"
	"time"

	"productcatalog/internal/history"
	"productcatalog/internal/resolver"
)

// Repair renders a repair report in catalog order.
type Repair resolver.RepairResult

func (r Repair) Table() Table {
	t := Table{Headers: []string{"ID", "Name", "Before", "After", "Note"}}
	for _, e := range r.Report {
		t.Rows = append(t.Rows, []string{strconv.Itoa(e.ID), e.Name, e.Before, e.After, e.Note})
	}
	return t
}

// Runs renders recorded repair runs, newest first.
type Runs []history.Run

func (rs Runs) Table() Table {
	t := Table{Headers: []string{"Run", "Started", "Catalog", "Products", "Fallbacks"}}
	for _, r := range rs {
		t.Rows = append(t.Rows, []string{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.CatalogPath,
			strconv.Itoa(r.Products),
			strconv.Itoa(r.Fallbacks),
		})
	}
	return t
}
