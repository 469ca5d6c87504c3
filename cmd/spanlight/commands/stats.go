package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spanlight/spanlight/pkg/stats"
)

// StatsCommand holds the flags for the stats command.
type StatsCommand struct {
	language string
	chart    string
	workers  int
}

// NewStatsCommand creates and configures the stats command.
func NewStatsCommand() *cobra.Command {
	cmd := &StatsCommand{}

	cobraCmd := &cobra.Command{
		Use:   "stats [paths...]",
		Short: "Aggregate classification statistics over files",
		Long: `Classify files and print aggregate category and language statistics.

Directories are walked recursively. The optional chart is a standalone HTML
file with the category distribution.

Examples:
  spanlight stats ./src                   # Table on stdout
  spanlight stats --chart dist.html ./src # Also write an HTML chart`,
		Args: cobra.MinimumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.language, "language", "l", "", "force the source language")
	cobraCmd.Flags().StringVar(&cmd.chart, "chart", "", "write an HTML category chart to this file")
	cobraCmd.Flags().IntVarP(&cmd.workers, "workers", "w", 0, "number of parallel workers (default: configured, then number of CPUs)")

	return cobraCmd
}

// Run executes the stats command.
func (c *StatsCommand) Run(cobraCmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cobraCmd)
	if err != nil {
		return err
	}

	language, err := resolveLanguageFlag(c.language)
	if err != nil {
		return err
	}

	files, err := expandPaths(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return ErrNoSourceFiles
	}

	workers := c.workers
	if workers <= 0 {
		workers = cfg.Workers
	}

	tables := newTableCache(cfg)

	results, err := classifyFiles(cobraCmd.Context(), tables, files, language, workers)
	if err != nil {
		return err
	}

	report := stats.NewReport()

	degraded := 0

	for _, res := range results {
		if res.Degraded {
			degraded++

			continue
		}

		report.Add(res.Language, res.Size, res.Result)
	}

	err = report.WriteTable(os.Stdout)
	if err != nil {
		return err
	}

	if degraded > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d files degraded to plain text\n", degraded, len(results))
	}

	if c.chart != "" {
		return writeChartFile(c.chart, report)
	}

	return nil
}

func writeChartFile(path string, report *stats.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer file.Close()

	err = report.WriteChart(file)
	if err != nil {
		return fmt.Errorf("write chart: %w", err)
	}

	return nil
}
