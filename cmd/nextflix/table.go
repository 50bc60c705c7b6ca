package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable draws rows under headers, right-aligning the columns
// named in rightAligned (1-based).
func renderTable(headers []string, rows [][]string, rightAligned ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)

	hr := make(table.Row, len(headers))
	for i, h := range headers {
		hr[i] = h
	}
	tw.AppendHeader(hr)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	if len(rightAligned) > 0 {
		configs := make([]table.ColumnConfig, 0, len(rightAligned))
		for _, n := range rightAligned {
			configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight})
		}
		tw.SetColumnConfigs(configs)
	}
	return tw.Render()
}
