package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameClassify  = "classify_source"
	ToolNameLanguages = "list_languages"
)

// Input size limits.
const (
	// MaxSourceInputBytes is the maximum allowed size for inline source input (1 MB).
	MaxSourceInputBytes = 1 << 20
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptySource indicates the source parameter is empty.
	ErrEmptySource = errors.New("source parameter is required and must not be empty")
	// ErrSourceTooLarge indicates the source input exceeds the size limit.
	ErrSourceTooLarge = errors.New("source input exceeds maximum size")
	// ErrLanguageUndetected indicates no language could be resolved from the input.
	ErrLanguageUndetected = errors.New("language could not be detected; pass a language or filename")
	// ErrUnsupportedLanguage indicates the language has no compiled-in grammar.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Input types (auto-generate JSON schemas via struct tags).

// ClassifyInput is the input schema for the classify_source tool.
type ClassifyInput struct {
	Filename   string   `json:"filename,omitempty"   jsonschema:"optional filename used to detect the language (e.g. main.go)"`
	Groups     []string `json:"groups,omitempty"     jsonschema:"optional feature groups to activate (default: baseline and standard)"`
	Language   string   `json:"language,omitempty"   jsonschema:"programming language (e.g. go python javascript); detected when omitted"`
	Source     string   `json:"source"               jsonschema:"source code to classify"`
	Candidates bool     `json:"candidates,omitempty" jsonschema:"include the full candidate sequence with rule provenance"`
}

// LanguagesInput is the input schema for the list_languages tool.
type LanguagesInput struct{}

// Output types (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateSourceInput checks common source input constraints.
func validateSourceInput(source string) error {
	if source == "" {
		return ErrEmptySource
	}

	if len(source) > MaxSourceInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrSourceTooLarge, len(source), MaxSourceInputBytes)
	}

	return nil
}
