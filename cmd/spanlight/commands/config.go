// Package commands implements the spanlight CLI subcommands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spanlight/spanlight/internal/config"
	"github.com/spanlight/spanlight/pkg/ruleset"
)

// loadConfig reads the configuration honoring the persistent --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		configPath = ""
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// newTableCache builds the shared rule table cache for the configured
// feature groups and ruleset directory.
func newTableCache(cfg *config.Config) *ruleset.TableCache {
	return ruleset.NewTableCache(cfg.Groups).WithDir(cfg.Rulesets.Dir)
}
