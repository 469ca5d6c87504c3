// Package format shells out to external formatter binaries. The caller's
// document is never touched: formatting happens on a scoped temp copy, and
// the formatted bytes are returned only after the process has fully
// succeeded.
package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrFormatterUnavailable signals that no formatter command is configured or
// the binary is not on PATH. Callers report it and leave the document as is.
var ErrFormatterUnavailable = errors.New("formatter not available")

// pathPlaceholder marks where the temp file path is substituted into the
// formatter's argument list. Without it the path is appended.
const pathPlaceholder = "{}"

// defaultTimeout bounds a formatter run. Formatters are interactive-latency
// tools; anything slower is treated as a failure.
const defaultTimeout = 30 * time.Second

// tempPattern names formatter temp files. The trailing * is replaced by a
// random suffix before the language extension is appended.
const tempPattern = "spanlight-fmt-*"

// FormatterError reports a formatter process that ran and failed. The
// document is untouched when it is returned.
type FormatterError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *FormatterError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("formatter %s: %v", e.Command, e.Err)
	}

	return fmt.Sprintf("formatter %s: %v: %s", e.Command, e.Err, strings.TrimSpace(e.Stderr))
}

func (e *FormatterError) Unwrap() error {
	return e.Err
}

// Formatter runs one external formatter command over document copies.
type Formatter struct {
	argv    []string
	suffix  string
	timeout time.Duration
}

// NewFormatter returns a formatter running argv. The argument list may
// contain {} where the temp file path belongs; otherwise the path is
// appended as the last argument.
func NewFormatter(argv ...string) *Formatter {
	return &Formatter{argv: argv, timeout: defaultTimeout}
}

// WithSuffix sets the temp file extension, letting formatters that sniff the
// language from the file name see the right one.
func (fmtr *Formatter) WithSuffix(suffix string) *Formatter {
	fmtr.suffix = suffix

	return fmtr
}

// WithTimeout overrides the per-run timeout.
func (fmtr *Formatter) WithTimeout(timeout time.Duration) *Formatter {
	fmtr.timeout = timeout

	return fmtr
}

// Available reports whether the formatter binary can be resolved.
func (fmtr *Formatter) Available() bool {
	if len(fmtr.argv) == 0 {
		return false
	}

	_, err := exec.LookPath(fmtr.argv[0])

	return err == nil
}

// Format runs the formatter over content and returns the formatted bytes.
// The temp copy is removed on every exit path. On any error the returned
// bytes are nil and the caller's content is untouched.
func (fmtr *Formatter) Format(ctx context.Context, content []byte) ([]byte, error) {
	if len(fmtr.argv) == 0 {
		return nil, ErrFormatterUnavailable
	}

	binary, lookErr := exec.LookPath(fmtr.argv[0])
	if lookErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrFormatterUnavailable, fmtr.argv[0])
	}

	tmpPath, err := writeTempCopy(content, fmtr.suffix)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
	}()

	runCtx, cancel := context.WithTimeout(ctx, fmtr.timeout)
	defer cancel()

	runErr := fmtr.run(runCtx, binary, tmpPath)
	if runErr != nil {
		return nil, runErr
	}

	formatted, readErr := os.ReadFile(tmpPath) //nolint:gosec // path from os.CreateTemp
	if readErr != nil {
		return nil, fmt.Errorf("read formatted output: %w", readErr)
	}

	return formatted, nil
}

func (fmtr *Formatter) run(ctx context.Context, binary, tmpPath string) error {
	args, substituted := substitutePath(fmtr.argv[1:], tmpPath)
	if !substituted {
		args = append(args, tmpPath)
	}

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec // command comes from user configuration
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return &FormatterError{Command: fmtr.argv[0], Stderr: stderr.String(), Err: err}
	}

	return nil
}

// writeTempCopy writes content to a fresh temp file and returns its path.
// The suffix lands after the random part so extension sniffing works.
func writeTempCopy(content []byte, suffix string) (string, error) {
	tmp, err := os.CreateTemp("", tempPattern+suffix)
	if err != nil {
		return "", fmt.Errorf("create temp copy: %w", err)
	}

	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(content)

	closeErr := tmp.Close()

	if writeErr != nil || closeErr != nil {
		_ = os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup

		if writeErr != nil {
			return "", fmt.Errorf("write temp copy: %w", writeErr)
		}

		return "", fmt.Errorf("close temp copy: %w", closeErr)
	}

	return tmpPath, nil
}

func substitutePath(args []string, path string) ([]string, bool) {
	out := make([]string, len(args))
	substituted := false

	for i, arg := range args {
		if strings.Contains(arg, pathPlaceholder) {
			out[i] = strings.ReplaceAll(arg, pathPlaceholder, path)
			substituted = true

			continue
		}

		out[i] = arg
	}

	return out, substituted
}

// FormatFile formats the file at path in place. The original is replaced
// atomically and only after the formatter has succeeded.
func (fmtr *Formatter) FormatFile(ctx context.Context, path string) (changed bool, err error) {
	content, readErr := os.ReadFile(path) //nolint:gosec // caller-supplied path, CLI context
	if readErr != nil {
		return false, fmt.Errorf("read %s: %w", path, readErr)
	}

	formatted, fmtErr := fmtr.Format(ctx, content)
	if fmtErr != nil {
		return false, fmtErr
	}

	if bytes.Equal(content, formatted) {
		return false, nil
	}

	perm := os.FileMode(0o600)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")

	writeErr := os.WriteFile(tmpPath, formatted, perm)
	if writeErr != nil {
		return false, fmt.Errorf("write %s: %w", tmpPath, writeErr)
	}

	renameErr := os.Rename(tmpPath, path)
	if renameErr != nil {
		_ = os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup

		return false, fmt.Errorf("replace %s: %w", path, renameErr)
	}

	return true, nil
}
