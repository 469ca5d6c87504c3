package stats

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth  = "900px"
	chartHeight = "500px"
)

// WriteChart renders the per-category counts as a standalone HTML bar chart.
func (report *Report) WriteChart(w io.Writer) error {
	categories := report.sortedCategories()

	labels := make([]string, 0, len(categories))
	data := make([]opts.BarData, 0, len(categories))

	for _, entry := range categories {
		labels = append(labels, entry.category.String())
		data = append(data, opts.BarData{Value: entry.count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Classification Statistics",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Annotations by category",
			Subtitle: fmt.Sprintf("%d annotations across %d files", report.Annotations(), report.Files()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	bar.SetXAxis(labels)
	bar.AddSeries("Annotations", data)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render stats chart: %w", err)
	}

	return nil
}
