package stats

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

const percentScale = 100

// WriteTable prints the report as category and language tables.
func (report *Report) WriteTable(w io.Writer) error {
	files, totalBytes, annotations, candidates := report.snapshotTotals()

	categories := report.sortedCategories()

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	tbl.AppendHeader(table.Row{"Category", "Count", "Share"})

	for _, entry := range categories {
		share := 0.0
		if annotations > 0 {
			share = float64(entry.count) / float64(annotations) * percentScale
		}

		tbl.AppendRow(table.Row{entry.category, entry.count, fmt.Sprintf("%.1f%%", share)})
	}

	tbl.AppendFooter(table.Row{"Total", annotations, ""})

	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return fmt.Errorf("write category table: %w", err)
	}

	languages := report.sortedLanguages()

	langTbl := table.NewWriter()
	langTbl.SetStyle(table.StyleLight)
	langTbl.Style().Options.SeparateRows = false

	langTbl.AppendHeader(table.Row{"Language", "Files"})

	for _, entry := range languages {
		langTbl.AppendRow(table.Row{entry.language, entry.count})
	}

	langTbl.AppendFooter(table.Row{"Total", files})

	if _, err := fmt.Fprintln(w, langTbl.Render()); err != nil {
		return fmt.Errorf("write language table: %w", err)
	}

	summary := fmt.Sprintf("%d files, %s, %d annotations from %d candidates\n",
		files, humanize.Bytes(totalBytes), annotations, candidates)

	if _, err := io.WriteString(w, summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}
