package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"measuremap/internal/ledger"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

var statusColors = map[string]text.Colors{
	string(ledger.StatusConverted): {text.FgGreen},
	string(ledger.StatusFailed):    {text.FgRed, text.Bold},
	string(ledger.StatusSkipped):   {text.Faint},
}

// renderTable lays rows out under headers. Short rows are padded. With
// colorize set, a "Status" column is colored by conversion status.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment, colorize bool) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(toRow(row, len(headers)))
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i, name := range headers {
		cfg := table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if i < len(aligns) && aligns[i] == alignRight {
			cfg.Align = text.AlignRight
		}
		if colorize && name == "Status" {
			cfg.Transformer = colorStatus
		}
		configs[i] = cfg
	}
	tw.SetColumnConfigs(configs)
	if colorize {
		tw.Style().Color.Header = text.Colors{text.Bold, text.FgBlue}
	}
	return tw.Render()
}

func toRow(values []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

func colorStatus(v any) string {
	s := fmt.Sprint(v)
	if colors, ok := statusColors[s]; ok {
		return colors.Sprint(s)
	}
	return s
}
