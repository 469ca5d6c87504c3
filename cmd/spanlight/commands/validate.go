package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/ruleset"
)

// exitCodeValidationFailure is the exit code for validation machinery errors.
const exitCodeValidationFailure = 2

// NewValidateCommand creates and configures the validate command.
func NewValidateCommand() *cobra.Command {
	var colorize, nocolor bool

	cmd := &cobra.Command{
		Use:   "validate <ruleset.yaml>",
		Short: "Validate a ruleset document",
		Long: `Validate a ruleset YAML document against the ruleset schema, then
compile it to catch rule-level problems the schema cannot express, such as
two rules in one group targeting the same shape.

Examples:
  spanlight validate myrules.yaml
  spanlight validate --no-color myrules.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0], colorize, nocolor)
		},
	}

	cmd.Flags().BoolVar(&colorize, "color", false, "force colored output")
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")

	return cmd
}

func runValidate(path string, colorize, nocolor bool) error {
	// Color setup.
	if nocolor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	} else if colorize {
		color.NoColor = false //nolint:reassign // intentional override of library global
	}

	doc, issues, err := validateRulesetFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to validate: %v\n", err)
		os.Exit(exitCodeValidationFailure)
	}

	if len(issues) == 0 {
		color.New(color.FgGreen).Fprintf(os.Stdout, "Ruleset is valid (%s)\n", path)
		color.New(color.FgGreen).Fprintf(os.Stdout, "  Language: %s, groups: %s\n",
			doc.Language, strings.Join(doc.GroupNames(), ", "))

		return nil
	}

	color.New(color.FgRed).Fprintf(os.Stdout, "Ruleset validation failed (%s)\n", path)
	fmt.Fprintf(os.Stdout, "\nIssues:\n")

	for _, issue := range issues {
		color.New(color.FgRed).Fprintf(os.Stdout, "  - %s\n", issue)
	}

	os.Exit(1)

	return nil
}

// validateRulesetFile loads and compiles a ruleset document. Schema and
// compile violations come back as issues; anything else is a machinery error.
func validateRulesetFile(path string) (*ruleset.Document, []string, error) {
	doc, err := ruleset.Load(path)
	if err != nil {
		var schemaErr *ruleset.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, schemaErr.Issues, nil
		}

		return nil, nil, err
	}

	_, err = doc.Build()
	if err != nil {
		if classify.IsConfigError(err) {
			return doc, []string{err.Error()}, nil
		}

		return nil, nil, err
	}

	return doc, nil, nil
}
