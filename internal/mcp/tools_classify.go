package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/grammar"
	"github.com/spanlight/spanlight/pkg/ruleset"
)

// ClassifyOutput is the structured result of the classify_source tool.
type ClassifyOutput struct {
	// Language is the grammar the source was classified under.
	Language string `json:"language"`

	// Groups are the feature groups that were active.
	Groups []string `json:"groups"`

	// Annotations is the resolved non-overlapping sequence, sorted by span start.
	Annotations []classify.Annotation `json:"annotations"`

	// Candidates is the full pre-resolution sequence, present on request.
	Candidates []classify.Candidate `json:"candidates,omitempty"`
}

// handleClassify processes classify_source tool calls.
func (s *Server) handleClassify(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ClassifyInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateSourceInput(input.Source)
	if err != nil {
		return errorResult(err)
	}

	source := []byte(input.Source)

	language, err := resolveLanguage(input.Language, input.Filename, source)
	if err != nil {
		return errorResult(err)
	}

	entry, groups, err := s.tableFor(language, input.Groups)
	if err != nil {
		return errorResult(fmt.Errorf("load ruleset: %w", err))
	}

	parser, err := grammar.SharedParser(language)
	if err != nil {
		return errorResult(fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language))
	}

	tree, err := parser.Parse(ctx, source)
	if err != nil {
		return errorResult(fmt.Errorf("parse source: %w", err))
	}

	result := classify.Classify(tree, entry.Table, entry.Active)

	output := ClassifyOutput{
		Language:    language,
		Groups:      groups,
		Annotations: result.Resolved,
	}
	if input.Candidates {
		output.Candidates = result.Candidates
	}

	return jsonResult(output)
}

// resolveLanguage picks the grammar for a call: an explicit language wins,
// then filename and content detection.
func resolveLanguage(language, filename string, source []byte) (string, error) {
	if language != "" {
		if !grammar.Supported(language) {
			if suggestion, ok := grammar.Closest(language); ok {
				return "", fmt.Errorf("%w: %s (did you mean %q?)", ErrUnsupportedLanguage, language, suggestion)
			}

			return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
		}

		return language, nil
	}

	detected := grammar.Detect(filename, source)
	if detected == "" {
		return "", ErrLanguageUndetected
	}

	return detected, nil
}

// tableFor returns the table and activation for a call, using the shared
// cache unless the call carries its own group selection.
func (s *Server) tableFor(language string, groups []string) (*ruleset.Entry, []string, error) {
	if len(groups) == 0 {
		entry, err := s.tables.Table(language)

		return entry, s.groups, err
	}

	entry, err := ruleset.Compile(language, groups)
	if err != nil {
		return nil, nil, err
	}

	return entry, groups, nil
}
