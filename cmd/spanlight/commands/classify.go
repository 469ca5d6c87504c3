package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spanlight/spanlight/pkg/archive"
	"github.com/spanlight/spanlight/pkg/classify"
)

// ClassifyCommand holds the flags for the classify command.
type ClassifyCommand struct {
	language    string
	output      string
	archivePath string
	raw         bool
	workers     int
}

// NewClassifyCommand creates and configures the classify command.
func NewClassifyCommand() *cobra.Command {
	cmd := &ClassifyCommand{}

	cobraCmd := &cobra.Command{
		Use:   "classify [paths...]",
		Short: "Classify source files into span annotations",
		Long: `Classify source files into presentation span annotations.

Directories are walked recursively; files whose extension maps to a compiled
grammar are classified. Files without a usable grammar degrade to a plain
entry with no annotations.

Examples:
  spanlight classify main.go                 # Classify a single file
  spanlight classify ./src                   # Classify a directory tree
  spanlight classify -l python script.txt    # Force the language
  spanlight classify --raw main.go           # Include pre-resolution candidates
  spanlight classify -a out.slar.json ./src  # Also write an archive`,
		Args: cobra.MinimumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.language, "language", "l", "", "force the source language")
	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", "", "output file (default: stdout)")
	cobraCmd.Flags().StringVarP(&cmd.archivePath, "archive", "a", "", "write classified documents to an archive file")
	cobraCmd.Flags().BoolVar(&cmd.raw, "raw", false, "include unresolved candidates in the output")
	cobraCmd.Flags().IntVarP(&cmd.workers, "workers", "w", 0, "number of parallel workers (default: configured, then number of CPUs)")

	return cobraCmd
}

// fileReport is the JSON shape emitted per classified file.
type fileReport struct {
	Path        string                `json:"path"`
	Language    string                `json:"language,omitempty"`
	Degraded    bool                  `json:"degraded,omitempty"`
	Annotations []classify.Annotation `json:"annotations"`
	Candidates  []classify.Candidate  `json:"candidates,omitempty"`
}

// Run executes the classify command.
func (c *ClassifyCommand) Run(cobraCmd *cobra.Command, args []string) error {
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

	if c.archivePath != "" {
		archiveErr := writeArchive(c.archivePath, results)
		if archiveErr != nil {
			return archiveErr
		}
	}

	writer, closeWriter, err := openOutput(c.output)
	if err != nil {
		return err
	}
	defer closeWriter()

	return writeReports(writer, results, c.raw)
}

// expandPaths resolves classify arguments: directories are walked, files pass
// through unchanged.
func expandPaths(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			files = append(files, arg)

			continue
		}

		collected, err := collectSourceFiles(arg)
		if err != nil {
			return nil, err
		}

		files = append(files, collected...)
	}

	return files, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}

	return file, func() { file.Close() }, nil
}

func writeReports(writer io.Writer, results []fileResult, raw bool) error {
	reports := make([]fileReport, 0, len(results))

	for _, res := range results {
		report := fileReport{
			Path:        res.Path,
			Language:    res.Language,
			Degraded:    res.Degraded,
			Annotations: res.Result.Resolved,
		}

		if report.Annotations == nil {
			report.Annotations = []classify.Annotation{}
		}

		if raw {
			report.Candidates = res.Result.Candidates
		}

		reports = append(reports, report)
	}

	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")

	err := enc.Encode(reports)
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}

	return nil
}

// writeArchive packs every non-degraded result into an archive file. Sources
// are re-read so the stored checksum matches the bytes on disk.
func writeArchive(path string, results []fileResult) error {
	ar := archive.New()

	for _, res := range results {
		if res.Degraded {
			continue
		}

		content, _, err := safeReadFile(res.Path)
		if err != nil {
			return err
		}

		doc, err := archive.Pack(res.Path, res.Language, content, res.Result.Resolved)
		if err != nil {
			return fmt.Errorf("pack %s: %w", res.Path, err)
		}

		ar.Add(doc)
	}

	err := archive.Save(path, archive.CodecForPath(path), ar)
	if err != nil {
		return fmt.Errorf("save archive: %w", err)
	}

	return nil
}
