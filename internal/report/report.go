// Package report renders audit, repair and history results for the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Table is data laid out for table output.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Tabular values know how to lay themselves out as a table.
type Tabular interface {
	Table() Table
}

// ParseFormat validates a --output value. Empty means auto-detect.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatTable, FormatJSON, FormatYAML, "":
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want table, json or yaml)", s)
	}
}

// DetectFormat returns explicit when set, table on a terminal and JSON
// when stdout is piped.
func DetectFormat(explicit Format) Format {
	if explicit != "" {
		return explicit
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}
	return FormatJSON
}

// Write renders v. Table output needs a Tabular value and falls back to
// JSON otherwise.
func Write(w io.Writer, f Format, v any) error {
	switch f {
	case FormatYAML:
		b, err := yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.IndentSequence(false))
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case FormatTable:
		if t, ok := v.(Tabular); ok {
			return WriteTable(w, t.Table())
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func WriteTable(w io.Writer, t Table) error {
	table := tablewriter.NewTable(w)

	if len(t.Headers) > 0 {
		headers := make([]any, len(t.Headers))
		for i, h := range t.Headers {
			headers[i] = h
		}
		table.Header(headers...)
	}

	for _, row := range t.Rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}
	return table.Render()
}
