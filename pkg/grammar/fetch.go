package grammar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	git2go "github.com/libgit2/git2go/v34"
)

// Sentinel errors for grammar acquisition.
var (
	ErrBadLanguageName = errors.New("invalid language name")
	ErrNoSourceURL     = errors.New("no source URL declared")
)

// Directory permissions for the grammar install root.
const fetchDirPerm = 0o750

// Staging and backup suffixes inside the install root. Staging directories
// are disposable; a leftover one means a previous fetch was interrupted.
const (
	stagingSuffix = ".staging"
	backupSuffix  = ".old"
)

// Source declares where a grammar's sources live.
type Source struct {
	Language string `mapstructure:"language" yaml:"language"`
	URL      string `mapstructure:"url"      yaml:"url"`
	Revision string `mapstructure:"revision" yaml:"revision"`
}

// Fetcher acquires grammar sources into an install root, one directory per
// language. Fetch is idempotent: re-fetching replaces the installed copy
// only after the new one is complete.
type Fetcher struct {
	root  string
	build []string
}

// NewFetcher returns a fetcher installing under root.
func NewFetcher(root string) *Fetcher {
	return &Fetcher{root: root}
}

// WithBuildCommand sets a command to run inside the fetched checkout before
// install, such as a parser generator. An empty argv skips the build step.
func (fetcher *Fetcher) WithBuildCommand(argv ...string) *Fetcher {
	fetcher.build = argv

	return fetcher
}

// InstallDir returns the install directory for a language.
func (fetcher *Fetcher) InstallDir(language string) string {
	return filepath.Join(fetcher.root, language)
}

// Fetch clones the grammar source into a staging directory, optionally runs
// the build command, then swaps the result into place. Any failure leaves a
// previously installed grammar untouched.
func (fetcher *Fetcher) Fetch(ctx context.Context, src Source) (string, error) {
	if !validLanguageName(src.Language) {
		return "", fmt.Errorf("%w: %q", ErrBadLanguageName, src.Language)
	}

	if src.URL == "" {
		return "", fmt.Errorf("%w: %s", ErrNoSourceURL, src.Language)
	}

	err := os.MkdirAll(fetcher.root, fetchDirPerm)
	if err != nil {
		return "", fmt.Errorf("create grammar root: %w", err)
	}

	final := fetcher.InstallDir(src.Language)
	staging := final + stagingSuffix

	// A leftover staging directory is from an interrupted fetch.
	removeErr := os.RemoveAll(staging)
	if removeErr != nil {
		return "", fmt.Errorf("clear staging dir: %w", removeErr)
	}

	cloneErr := cloneSource(ctx, src, staging)
	if cloneErr != nil {
		_ = os.RemoveAll(staging) //nolint:errcheck // best-effort cleanup

		return "", cloneErr
	}

	buildErr := fetcher.runBuild(ctx, staging)
	if buildErr != nil {
		_ = os.RemoveAll(staging) //nolint:errcheck // best-effort cleanup

		return "", buildErr
	}

	installErr := swapInstall(staging, final)
	if installErr != nil {
		_ = os.RemoveAll(staging) //nolint:errcheck // best-effort cleanup

		return "", installErr
	}

	return final, nil
}

func cloneSource(ctx context.Context, src Source, dest string) error {
	if ctx.Err() != nil {
		return fmt.Errorf("fetch %s: %w", src.Language, ctx.Err())
	}

	repo, err := git2go.Clone(src.URL, dest, &git2go.CloneOptions{})
	if err != nil {
		return fmt.Errorf("clone %s: %w", src.URL, err)
	}
	defer repo.Free()

	if src.Revision == "" {
		return nil
	}

	return checkoutRevision(repo, src)
}

func checkoutRevision(repo *git2go.Repository, src Source) error {
	obj, err := repo.RevparseSingle(src.Revision)
	if err != nil {
		return fmt.Errorf("resolve revision %s@%s: %w", src.Language, src.Revision, err)
	}
	defer obj.Free()

	peeled, err := obj.Peel(git2go.ObjectCommit)
	if err != nil {
		return fmt.Errorf("peel revision %s@%s: %w", src.Language, src.Revision, err)
	}
	defer peeled.Free()

	commit, err := peeled.AsCommit()
	if err != nil {
		return fmt.Errorf("revision %s@%s is not a commit: %w", src.Language, src.Revision, err)
	}

	resetErr := repo.ResetToCommit(commit, git2go.ResetHard, &git2go.CheckoutOptions{
		Strategy: git2go.CheckoutForce,
	})
	if resetErr != nil {
		return fmt.Errorf("checkout %s@%s: %w", src.Language, src.Revision, resetErr)
	}

	return nil
}

func (fetcher *Fetcher) runBuild(ctx context.Context, dir string) error {
	if len(fetcher.build) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, fetcher.build[0], fetcher.build[1:]...)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("build grammar (%s): %w: %s", fetcher.build[0], err, out)
	}

	return nil
}

// swapInstall moves staging into place. The previous install is parked under
// a backup name and restored if the final rename fails.
func swapInstall(staging, final string) error {
	backup := final + backupSuffix

	removeErr := os.RemoveAll(backup)
	if removeErr != nil {
		return fmt.Errorf("clear backup dir: %w", removeErr)
	}

	hadPrevious := false

	_, statErr := os.Stat(final)
	if statErr == nil {
		hadPrevious = true

		parkErr := os.Rename(final, backup)
		if parkErr != nil {
			return fmt.Errorf("park previous install: %w", parkErr)
		}
	}

	renameErr := os.Rename(staging, final)
	if renameErr != nil {
		if hadPrevious {
			_ = os.Rename(backup, final) //nolint:errcheck // best-effort restore
		}

		return fmt.Errorf("install grammar: %w", renameErr)
	}

	if hadPrevious {
		_ = os.RemoveAll(backup) //nolint:errcheck // best-effort cleanup
	}

	return nil
}

// validLanguageName accepts lowercase letters, digits, and underscore.
// Anything else could escape the install root when joined into a path.
func validLanguageName(name string) bool {
	if name == "" {
		return false
	}

	for i := range len(name) {
		ch := name[i]
		if (ch < 'a' || ch > 'z') && (ch < '0' || ch > '9') && ch != '_' {
			return false
		}
	}

	return true
}
