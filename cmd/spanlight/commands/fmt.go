package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/spanlight/spanlight/internal/config"
	"github.com/spanlight/spanlight/pkg/format"
	"github.com/spanlight/spanlight/pkg/grammar"
	"github.com/spanlight/spanlight/pkg/safeconv"
)

// ErrNoFormatter indicates no formatter is configured for the file's language.
var ErrNoFormatter = errors.New("no formatter configured")

// FmtCommand holds the flags for the fmt command.
type FmtCommand struct {
	write  bool
	diff   bool
	cursor int
}

// NewFmtCommand creates and configures the fmt command.
func NewFmtCommand() *cobra.Command {
	cmd := &FmtCommand{}

	cobraCmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Reformat a file through its configured formatter",
		Long: `Run the configured external formatter for the file's language.

Formatted output goes to stdout unless --write replaces the file in place.
With --cursor, the equivalent offset in the formatted output is printed to
stderr, for editors that restore the caret after formatting.

Examples:
  spanlight fmt main.go                # Print formatted source
  spanlight fmt -w main.go             # Rewrite the file in place
  spanlight fmt -d main.go             # Show a diff instead of the output
  spanlight fmt --cursor 120 main.go   # Remap a byte offset`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolVarP(&cmd.write, "write", "w", false, "write the result back to the file")
	cobraCmd.Flags().BoolVarP(&cmd.diff, "diff", "d", false, "print a diff instead of the formatted source")
	cobraCmd.Flags().IntVar(&cmd.cursor, "cursor", -1, "byte offset to remap into the formatted output")

	return cobraCmd
}

// Run executes the fmt command.
func (c *FmtCommand) Run(cobraCmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cobraCmd)
	if err != nil {
		return err
	}

	content, resolvedPath, err := safeReadFile(args[0])
	if err != nil {
		return err
	}

	language := grammar.Detect(resolvedPath, content)

	formatter, err := formatterFor(cfg, language, resolvedPath)
	if err != nil {
		return err
	}

	formatted, err := formatter.Format(cobraCmd.Context(), content)
	if err != nil {
		return fmt.Errorf("format %s: %w", args[0], err)
	}

	if c.cursor >= 0 {
		remap := format.NewRemap(content, formatted)
		fmt.Fprintf(os.Stderr, "cursor: %d\n", remap.Offset(safeconv.MustIntToUint32(c.cursor)))
	}

	switch {
	case c.diff:
		return printDiff(os.Stdout, string(content), string(formatted))
	case c.write:
		return atomicWriteFile(resolvedPath, formatted)
	default:
		_, err = os.Stdout.Write(formatted)

		return err
	}
}

// formatterFor builds the external formatter for a language from config.
// A missing entry wraps ErrFormatterUnavailable so callers can degrade.
func formatterFor(cfg *config.Config, language, path string) (*format.Formatter, error) {
	if language == "" {
		return nil, fmt.Errorf("%w: language of %s not detected", format.ErrFormatterUnavailable, path)
	}

	fc, ok := cfg.Formatters[language]
	if !ok || len(fc.Command) == 0 {
		return nil, fmt.Errorf("%w for %s: %s", ErrNoFormatter, language, path)
	}

	timeout := fc.TimeoutSeconds
	if timeout <= 0 {
		timeout = config.DefaultFormatterTimeoutSeconds
	}

	formatter := format.NewFormatter(fc.Command...).
		WithSuffix(filepath.Ext(path)).
		WithTimeout(time.Duration(timeout) * time.Second)

	return formatter, nil
}

func printDiff(w io.Writer, before, after string) error {
	if before == after {
		return nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	_, err := fmt.Fprint(w, dmp.DiffPrettyText(diffs))

	return err
}
