package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spanlight/spanlight/pkg/lsp"
	"github.com/spanlight/spanlight/pkg/version"
)

// NewLSPCommand creates the LSP server command.
func NewLSPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server on stdio",
		Long: `Start a Language Server Protocol server on stdio.

The server publishes semantic tokens and hover information computed from the
classification rulesets. Logs go to stderr; stdout carries the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cobraCmd)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			srv := lsp.NewServer(cfg.Groups, version.Version, logger).
				WithRulesetDir(cfg.Rulesets.Dir)

			return srv.Run()
		},
	}
}
