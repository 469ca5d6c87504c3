package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spanlight/spanlight/pkg/grammar"
)

// LanguageInfo describes one compiled-in grammar.
type LanguageInfo struct {
	// Name is the grammar name (also the ruleset name).
	Name string `json:"name"`

	// Extensions are the file extensions detected as this language.
	Extensions []string `json:"extensions"`
}

// LanguagesOutput is the structured result of the list_languages tool.
type LanguagesOutput struct {
	Languages []LanguageInfo `json:"languages"`
	Count     int            `json:"count"`
}

// handleListLanguages processes list_languages tool calls.
func (s *Server) handleListLanguages(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	_ LanguagesInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	names := grammar.Languages()

	languages := make([]LanguageInfo, 0, len(names))
	for _, name := range names {
		languages = append(languages, LanguageInfo{
			Name:       name,
			Extensions: grammar.Extensions(name),
		})
	}

	return jsonResult(LanguagesOutput{
		Languages: languages,
		Count:     len(languages),
	})
}
