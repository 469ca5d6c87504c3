// Package config loads and validates spanlight configuration from file,
// environment, and defaults.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spanlight/spanlight/pkg/grammar"
)

// Defaults applied before any file or environment override.
const (
	// DefaultIndentWidth is the editor indent hint emitted with documents.
	DefaultIndentWidth = 2

	// DefaultTheme selects the built-in terminal palette.
	DefaultTheme = "default"

	// DefaultWorkers of zero means one worker per CPU.
	DefaultWorkers = 0

	// DefaultServerAddr is the classify server listen address.
	DefaultServerAddr = ":8080"

	// DefaultServerTimeoutSeconds bounds request handling.
	DefaultServerTimeoutSeconds = 30

	// DefaultServerMaxBodyBytes caps uploaded document size (4 MiB).
	DefaultServerMaxBodyBytes = 4 << 20

	// DefaultFormatterTimeoutSeconds bounds one formatter run.
	DefaultFormatterTimeoutSeconds = 30
)

// Theme names accepted by the CLI.
const (
	ThemeDefault = "default"
	ThemeNone    = "none"
)

// DefaultGroups are the feature groups active when none are configured.
// Cosmetic is deliberately opt-in.
//
//nolint:gochecknoglobals // Static default, copied before use.
var DefaultGroups = []string{"baseline", "standard"}

// Config is the top-level configuration struct for spanlight.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Groups      []string                   `mapstructure:"groups"`
	IndentWidth int                        `mapstructure:"indent_width"`
	Theme       string                     `mapstructure:"theme"`
	Workers     int                        `mapstructure:"workers"`
	Rulesets    RulesetConfig              `mapstructure:"rulesets"`
	Formatters  map[string]FormatterConfig `mapstructure:"formatters"`
	Grammars    GrammarConfig              `mapstructure:"grammars"`
	Server      ServerConfig               `mapstructure:"server"`
	Telemetry   TelemetryConfig            `mapstructure:"telemetry"`
}

// RulesetConfig points at rulesets beyond the embedded set.
type RulesetConfig struct {
	// Dir holds additional ruleset documents, one YAML file per language.
	// Files here shadow embedded rulesets of the same language.
	Dir string `mapstructure:"dir"`
}

// FormatterConfig configures one language's external formatter.
type FormatterConfig struct {
	Command        []string `mapstructure:"command"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
}

// GrammarConfig configures grammar source acquisition.
type GrammarConfig struct {
	Dir     string           `mapstructure:"dir"`
	Sources []grammar.Source `mapstructure:"sources"`
}

// ServerConfig configures the HTTP classify server.
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxBodyBytes   int64  `mapstructure:"max_body_bytes"`
}

// TelemetryConfig selects the observability mode.
type TelemetryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Mode    string `mapstructure:"mode"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidIndentWidth indicates indent_width is not positive.
	ErrInvalidIndentWidth = errors.New("indent_width must be positive")
	// ErrUnknownTheme indicates an unsupported theme name.
	ErrUnknownTheme = errors.New("theme must be default or none")
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("workers must be non-negative")
	// ErrEmptyGroupName indicates a blank entry in the groups list.
	ErrEmptyGroupName = errors.New("groups must not contain empty names")
	// ErrInvalidServerTimeout indicates the server timeout is not positive.
	ErrInvalidServerTimeout = errors.New("server.timeout_seconds must be positive")
	// ErrInvalidMaxBodyBytes indicates the body cap is not positive.
	ErrInvalidMaxBodyBytes = errors.New("server.max_body_bytes must be positive")
	// ErrInvalidFormatterTimeout indicates a formatter timeout is negative.
	ErrInvalidFormatterTimeout = errors.New("formatter timeout_seconds must be non-negative")
)

// Validate checks Config invariants and returns the first error found.
// Feature group names are validated later, against the loaded rule table.
func (c *Config) Validate() error {
	if c.IndentWidth <= 0 {
		return ErrInvalidIndentWidth
	}

	if c.Theme != ThemeDefault && c.Theme != ThemeNone {
		return ErrUnknownTheme
	}

	if c.Workers < 0 {
		return ErrInvalidWorkers
	}

	for _, group := range c.Groups {
		if group == "" {
			return ErrEmptyGroupName
		}
	}

	if c.Server.TimeoutSeconds <= 0 {
		return ErrInvalidServerTimeout
	}

	if c.Server.MaxBodyBytes <= 0 {
		return ErrInvalidMaxBodyBytes
	}

	for _, formatter := range c.Formatters {
		if formatter.TimeoutSeconds < 0 {
			return ErrInvalidFormatterTimeout
		}
	}

	return nil
}

// DefaultGrammarDir returns the default install root for fetched grammar
// sources (~/.spanlight/grammars).
func DefaultGrammarDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return filepath.Join(home, ".spanlight", "grammars")
}
