package main

import (
	"strconv"

	"github.com/cenodude/plex-watchlist/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func renderSummaryTable(summary *models.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Type", "Title", "Year", "Status", "Reason"})

	for _, r := range summary.Results {
		year := ""
		if r.Year > 0 {
			year = strconv.Itoa(r.Year)
		}
		tw.AppendRow(table.Row{string(r.Kind), r.Title, year, string(r.Status), r.Reason})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
