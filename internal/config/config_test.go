package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanlight/spanlight/internal/config"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	// An explicitly named missing file is an error; search-path mode is not.
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	cfg, err := loadFromDir(t, "")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultIndentWidth, cfg.IndentWidth)
	assert.Equal(t, config.ThemeDefault, cfg.Theme)
	assert.Equal(t, []string{"baseline", "standard"}, cfg.Groups)
	assert.Equal(t, config.DefaultServerAddr, cfg.Server.Addr)
	assert.EqualValues(t, config.DefaultServerMaxBodyBytes, cfg.Server.MaxBodyBytes)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	cfg, err := loadFromDir(t, `
groups: [baseline, standard, cosmetic]
indent_width: 4
theme: none
formatters:
  go:
    command: [gofmt, -w]
server:
  addr: ":9999"
grammars:
  sources:
    - language: zig
      url: https://example.com/tree-sitter-zig.git
      revision: v1.2.0
`)
	require.NoError(t, err)

	assert.Equal(t, []string{"baseline", "standard", "cosmetic"}, cfg.Groups)
	assert.Equal(t, 4, cfg.IndentWidth)
	assert.Equal(t, config.ThemeNone, cfg.Theme)
	assert.Equal(t, ":9999", cfg.Server.Addr)

	require.Contains(t, cfg.Formatters, "go")
	assert.Equal(t, []string{"gofmt", "-w"}, cfg.Formatters["go"].Command)

	require.Len(t, cfg.Grammars.Sources, 1)
	assert.Equal(t, "zig", cfg.Grammars.Sources[0].Language)
	assert.Equal(t, "v1.2.0", cfg.Grammars.Sources[0].Revision)
}

func TestLoadConfig_ValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{name: "zero indent", yaml: "indent_width: 0", wantErr: config.ErrInvalidIndentWidth},
		{name: "negative indent", yaml: "indent_width: -2", wantErr: config.ErrInvalidIndentWidth},
		{name: "bad theme", yaml: "theme: neon", wantErr: config.ErrUnknownTheme},
		{name: "negative workers", yaml: "workers: -1", wantErr: config.ErrInvalidWorkers},
		{name: "blank group", yaml: `groups: [baseline, ""]`, wantErr: config.ErrEmptyGroupName},
		{name: "zero server timeout", yaml: "server:\n  timeout_seconds: 0", wantErr: config.ErrInvalidServerTimeout},
		{
			name:    "negative formatter timeout",
			yaml:    "formatters:\n  go:\n    timeout_seconds: -5",
			wantErr: config.ErrInvalidFormatterTimeout,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadFromDir(t, tc.yaml)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SPANLIGHT_INDENT_WIDTH", "8")

	cfg, err := loadFromDir(t, "")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.IndentWidth)
}

func TestDefaultGrammarDir_UnderHome(t *testing.T) {
	dir := config.DefaultGrammarDir()

	assert.Contains(t, dir, ".spanlight")
	assert.Equal(t, "grammars", filepath.Base(dir))
}

// loadFromDir writes the YAML body to an explicit config file and loads it.
// An empty body exercises the no-file defaults path.
func loadFromDir(t *testing.T, body string) (*config.Config, error) {
	t.Helper()

	if body == "" {
		dir := t.TempDir()
		t.Chdir(dir)

		return config.LoadConfig("")
	}

	path := filepath.Join(t.TempDir(), "spanlight.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return config.LoadConfig(path)
}
