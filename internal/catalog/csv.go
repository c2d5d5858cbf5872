package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"productcatalog/pkg/models"
)

var csvHeader = []string{"id", "name", "type", "price", "description", "image"}

// WriteCSV exports products with a header row, in catalog order.
func WriteCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, p := range products {
		if err := cw.Write([]string{
			strconv.Itoa(p.ID),
			p.Name,
			p.Type,
			strconv.FormatFloat(p.Price, 'f', -1, 64),
			p.Description,
			p.Image,
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV imports products. Columns are located by header name, so order
// does not matter; rows without an id or name are skipped.
func ReadCSV(r io.Reader) ([]models.Product, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	out := []models.Product{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(row) == 0 {
			continue
		}

		rawID := valueAt(header, row, "id")
		name := valueAt(header, row, "name")
		if rawID == "" || name == "" {
			continue
		}

		id, err := strconv.Atoi(rawID)
		if err != nil {
			return nil, fmt.Errorf("parse id on line %d: %w", line, err)
		}

		var price float64
		if raw := valueAt(header, row, "price"); raw != "" {
			price, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("parse price for %d: %w", id, err)
			}
		}

		out = append(out, models.Product{
			ID:          id,
			Name:        name,
			Type:        valueAt(header, row, "type"),
			Price:       price,
			Description: valueAt(header, row, "description"),
			Image:       valueAt(header, row, "image"),
		})
	}
	return out, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
