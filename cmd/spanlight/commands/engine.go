package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/grammar"
	"github.com/spanlight/spanlight/pkg/ruleset"
	"github.com/spanlight/spanlight/pkg/textutil"
)

// ErrNoSourceFiles indicates a directory walk found nothing classifiable.
var ErrNoSourceFiles = errors.New("no source files found")

// ErrUnknownLanguage indicates an explicit language flag named no
// compiled-in grammar.
var ErrUnknownLanguage = errors.New("unknown language")

// fileResult is the classification outcome for one file. A degraded result
// carries no annotations: the content was binary, the language unknown, its
// grammar missing, or the source unparseable.
type fileResult struct {
	Path     string
	Language string
	Size     uint64
	Result   classify.Result
	Degraded bool
}

// classifyBytes runs the classification pipeline on in-memory source.
// Ruleset and activation failures are returned as errors; everything that
// only concerns this one file degrades to a plain result instead.
func classifyBytes(ctx context.Context, tables *ruleset.TableCache, path string, content []byte, language string) (fileResult, error) {
	res := fileResult{Path: path, Size: uint64(len(content))}

	// Binary content is never classifiable; degrade before detection.
	if textutil.IsBinary(content) {
		res.Degraded = true

		return res, nil
	}

	if language == "" {
		language = grammar.Detect(path, content)
	}

	if language == "" {
		res.Degraded = true

		return res, nil
	}

	res.Language = language

	entry, err := tables.Table(language)
	if err != nil {
		return res, fmt.Errorf("load ruleset for %s: %w", language, err)
	}

	parser, err := grammar.SharedParser(language)
	if err != nil {
		if errors.Is(err, grammar.ErrGrammarUnavailable) {
			res.Degraded = true

			return res, nil
		}

		return res, err
	}

	tree, err := parser.Parse(ctx, content)
	if err != nil {
		res.Degraded = true

		return res, nil
	}

	res.Result = classify.Classify(tree, entry.Table, entry.Active)

	return res, nil
}

// resolveLanguageFlag validates an explicit --language value against the
// compiled-in grammars so a typo fails fast instead of silently degrading
// every file. The empty string means "detect per file" and passes through.
func resolveLanguageFlag(language string) (string, error) {
	if language == "" {
		return "", nil
	}

	normalized := strings.ToLower(strings.TrimSpace(language))
	if grammar.Supported(normalized) {
		return normalized, nil
	}

	if suggestion, ok := grammar.Closest(normalized); ok {
		return "", fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownLanguage, language, suggestion)
	}

	if grammar.Upstream(normalized) {
		return "", fmt.Errorf("%w %q (grammar not compiled into this build)", ErrUnknownLanguage, language)
	}

	return "", fmt.Errorf("%w %q", ErrUnknownLanguage, language)
}

// classifyPath reads and classifies one file from disk.
func classifyPath(ctx context.Context, tables *ruleset.TableCache, path, language string) (fileResult, error) {
	content, resolvedPath, err := safeReadFile(path)
	if err != nil {
		return fileResult{Path: path}, err
	}

	res, err := classifyBytes(ctx, tables, resolvedPath, content, language)
	res.Path = path

	return res, err
}

type indexedFile struct {
	index int
	path  string
}

// workerState holds shared mutable state for the classification worker pool.
type workerState struct {
	mu       sync.Mutex
	firstErr error
}

// setError records the first error encountered by any worker.
func (ws *workerState) setError(err error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.firstErr == nil {
		ws.firstErr = err
	}
}

// err returns the first recorded error, or nil.
func (ws *workerState) err() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	return ws.firstErr
}

// classifyFiles processes files concurrently using a worker pool. Results
// keep the input order. Parsers are pool-backed and shared across workers.
func classifyFiles(ctx context.Context, tables *ruleset.TableCache, files []string, language string, workers int) ([]fileResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if workers > len(files) {
		workers = len(files)
	}

	results := make([]fileResult, len(files))
	fileCh := make(chan indexedFile, workers)
	state := &workerState{}

	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for item := range fileCh {
				// After a failure, keep draining so the sender never blocks.
				if state.err() != nil {
					continue
				}

				res, err := classifyPath(ctx, tables, item.path, language)
				if err != nil {
					state.setError(err)

					continue
				}

				results[item.index] = res
			}
		}()
	}

	for i, f := range files {
		fileCh <- indexedFile{index: i, path: f}
	}

	close(fileCh)
	wg.Wait()

	if err := state.err(); err != nil {
		return nil, err
	}

	return results, nil
}

// collectSourceFiles walks dir recursively and returns every file whose
// extension maps to a compiled grammar. Hidden directories are skipped.
func collectSourceFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if isHiddenDir(filepath.Base(path)) {
				return filepath.SkipDir
			}

			return nil
		}

		if _, ok := grammar.DetectByExtension(path); ok {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	return files, nil
}

// isHiddenDir returns true for directory names that start with a dot
// (e.g. .git). The walk root itself comes through as "." and stays included.
func isHiddenDir(name string) bool {
	return len(name) > 1 && name[0] == '.'
}
