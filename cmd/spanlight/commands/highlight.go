package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spanlight/spanlight/internal/config"
	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/render"
	"github.com/spanlight/spanlight/pkg/ruleset"
)

// HighlightCommand holds the flags for the highlight command.
type HighlightCommand struct {
	language string
	groups   []string
	noColor  bool
	html     bool
}

// NewHighlightCommand creates and configures the highlight command.
func NewHighlightCommand() *cobra.Command {
	cmd := &HighlightCommand{}

	cobraCmd := &cobra.Command{
		Use:   "highlight <file>",
		Short: "Render a classified file to the terminal",
		Long: `Render one source file to the terminal with ANSI colors.

Files without a usable grammar are printed as plain text.

Examples:
  spanlight highlight main.go                # Highlight with configured groups
  spanlight highlight -g baseline main.go    # Activate only the baseline group
  spanlight highlight --no-color main.go     # Plain output
  spanlight highlight --html main.go         # Standalone HTML page on stdout`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.language, "language", "l", "", "force the source language")
	cobraCmd.Flags().StringArrayVarP(&cmd.groups, "group", "g", nil, "feature group to activate (repeatable, overrides config)")
	cobraCmd.Flags().BoolVar(&cmd.noColor, "no-color", false, "disable colored output")
	cobraCmd.Flags().BoolVar(&cmd.html, "html", false, "emit a standalone HTML page instead of ANSI output")

	return cobraCmd
}

// Run executes the highlight command.
func (c *HighlightCommand) Run(cobraCmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cobraCmd)
	if err != nil {
		return err
	}

	if c.noColor || cfg.Theme == config.ThemeNone {
		//nolint:reassign // Deliberate global color toggle per the command flags.
		color.NoColor = true
	}

	language, err := resolveLanguageFlag(c.language)
	if err != nil {
		return err
	}

	tables := c.tableCache(cfg)

	content, resolvedPath, err := safeReadFile(args[0])
	if err != nil {
		return err
	}

	res, err := classifyBytes(cobraCmd.Context(), tables, resolvedPath, content, language)
	if err != nil {
		return err
	}

	if c.html {
		return writeHTMLPage(os.Stdout, content, res.Result.Resolved)
	}

	if res.Degraded {
		return render.Plain(os.Stdout, content)
	}

	return render.Terminal(os.Stdout, content, res.Result.Resolved, render.DefaultTheme())
}

// writeHTMLPage wraps the rendered pre block in a minimal page carrying the
// category stylesheet. Degraded input renders as an unannotated block.
func writeHTMLPage(w io.Writer, source []byte, annotations []classify.Annotation) error {
	_, err := io.WriteString(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><style>\n")
	if err != nil {
		return fmt.Errorf("write html page: %w", err)
	}

	if err := render.StyleSheet(w); err != nil {
		return err
	}

	_, err = io.WriteString(w, "</style></head><body>\n")
	if err != nil {
		return fmt.Errorf("write html page: %w", err)
	}

	if err := render.HTML(w, source, annotations); err != nil {
		return err
	}

	_, err = io.WriteString(w, "</body></html>\n")
	if err != nil {
		return fmt.Errorf("write html page: %w", err)
	}

	return nil
}

// tableCache honors a per-invocation --group override ahead of the config.
func (c *HighlightCommand) tableCache(cfg *config.Config) *ruleset.TableCache {
	if len(c.groups) == 0 {
		return newTableCache(cfg)
	}

	return ruleset.NewTableCache(c.groups).WithDir(cfg.Rulesets.Dir)
}
