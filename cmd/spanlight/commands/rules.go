package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/ruleset"
)

// RulesCommand holds the flags for the rules command.
type RulesCommand struct {
	language string
}

// NewRulesCommand creates and configures the rules command.
func NewRulesCommand() *cobra.Command {
	cmd := &RulesCommand{}

	cobraCmd := &cobra.Command{
		Use:   "rules",
		Short: "List embedded ruleset languages and their rules",
		Long: `List the embedded classification rulesets.

Without flags, one summary row per language. With --language, every rule of
that language's ruleset.

Examples:
  spanlight rules                 # Summary across languages
  spanlight rules -l go           # Every rule of the go ruleset`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.language, "language", "l", "", "show every rule of one language")

	return cobraCmd
}

// Run executes the rules command.
func (c *RulesCommand) Run(_ *cobra.Command, _ []string) error {
	if c.language == "" {
		return writeRulesetSummary(os.Stdout)
	}

	return writeLanguageRules(os.Stdout, c.language)
}

func writeRulesetSummary(w io.Writer) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.AppendHeader(table.Row{"Language", "Groups", "Rules"})

	totalRules := 0

	for _, language := range ruleset.BuiltinLanguages() {
		doc, err := ruleset.Builtin(language)
		if err != nil {
			return err
		}

		rules := 0
		for _, group := range doc.Groups {
			rules += len(group.Rules)
		}

		totalRules += rules

		tbl.AppendRow(table.Row{language, strings.Join(doc.GroupNames(), ", "), rules})
	}

	tbl.AppendFooter(table.Row{"Total", "", totalRules})
	fmt.Fprintln(w, tbl.Render())

	return nil
}

func writeLanguageRules(w io.Writer, language string) error {
	doc, err := ruleset.BuiltinOrFallback(language)
	if err != nil {
		return err
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.AppendHeader(table.Row{"Group", "Rule", "Category", "Pattern"})

	rules := 0

	for _, group := range doc.Groups {
		for _, rule := range group.Rules {
			tbl.AppendRow(table.Row{group.Name, rule.Name, rule.Category, patternSummary(rule.Pattern)})
			rules++
		}
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("%d groups", len(doc.Groups)), fmt.Sprintf("%d rules", rules), "", ""})
	fmt.Fprintln(w, tbl.Render())

	return nil
}

// maxTokensShown bounds the token list in the pattern column.
const maxTokensShown = 4

func patternSummary(pattern classify.Pattern) string {
	var parts []string

	if pattern.Type != "" {
		parts = append(parts, "type="+pattern.Type)
	}

	if pattern.Field != "" {
		field := "field=" + pattern.Field
		if pattern.FieldType != "" {
			field += ":" + pattern.FieldType
		}

		parts = append(parts, field)
	}

	if pattern.ChildType != "" {
		parts = append(parts, "child="+pattern.ChildType)
	}

	if len(pattern.Tokens) > 0 {
		tokens := pattern.Tokens
		suffix := ""

		if len(tokens) > maxTokensShown {
			suffix = fmt.Sprintf(" +%d", len(tokens)-maxTokensShown)
			tokens = tokens[:maxTokensShown]
		}

		parts = append(parts, "tokens="+strings.Join(tokens, ",")+suffix)
	}

	return strings.Join(parts, " ")
}
