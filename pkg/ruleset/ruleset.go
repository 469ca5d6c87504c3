// Package ruleset loads rule-table definitions from YAML documents, checks
// them against the embedded JSON schema, and builds classification tables.
// Built-in rulesets ship embedded, one per supported grammar; the document
// format is the versioning point between a grammar and its rule table.
package ruleset

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/spanlight/spanlight/pkg/classify"
)

// Sentinel errors for ruleset loading.
var (
	ErrUnknownLanguage = errors.New("no built-in ruleset for language")
	errEmptyDocument   = errors.New("ruleset document is empty")
)

// Document is one parsed ruleset: the grammar it targets plus its feature
// groups in activation order. A grammar upgrade that renames node types
// requires a matching Document update; the Grammar field records the pairing.
type Document struct {
	// Language is the language the ruleset classifies.
	Language string `json:"language" yaml:"language"`

	// Grammar names the grammar (and implicitly its node-type inventory)
	// the patterns were written against.
	Grammar string `json:"grammar,omitempty" yaml:"grammar,omitempty"`

	// Groups are the feature groups in activation order.
	Groups []classify.Group `json:"groups" yaml:"groups"`
}

// SchemaError reports a ruleset document that failed JSON-schema validation.
type SchemaError struct {
	// Issues holds one human-readable line per violation.
	Issues []string
}

// Error implements the error interface.
func (schemaErr *SchemaError) Error() string {
	return fmt.Sprintf("ruleset schema: %s", strings.Join(schemaErr.Issues, "; "))
}

// Parse decodes a YAML ruleset document, validates it against the embedded
// JSON schema, and returns it. Schema violations come back as *SchemaError.
func Parse(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, errEmptyDocument
	}

	if err := validateAgainstSchema(data); err != nil {
		return nil, err
	}

	var doc Document

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode ruleset: %w", err)
	}

	return &doc, nil
}

// Load reads and parses a ruleset document from a file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is user-supplied configuration.
	if err != nil {
		return nil, fmt.Errorf("read ruleset %s: %w", path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse ruleset %s: %w", path, err)
	}

	return doc, nil
}

// Build compiles the document's groups into a classification table. Errors
// are classify.ConfigError values: fatal, the table must not be used.
func (doc *Document) Build() (*classify.Table, error) {
	table, err := classify.Load(doc.Groups...)
	if err != nil {
		return nil, fmt.Errorf("ruleset %q: %w", doc.Language, err)
	}

	return table, nil
}

// GroupNames returns the document's group names in activation order.
func (doc *Document) GroupNames() []string {
	names := make([]string, len(doc.Groups))
	for idx := range doc.Groups {
		names[idx] = doc.Groups[idx].Name
	}

	return names
}

// validateAgainstSchema checks the YAML payload against the embedded schema.
func validateAgainstSchema(data []byte) error {
	var generic any

	if err := yaml.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("decode ruleset: %w", err)
	}

	schemaBytes, err := SchemaFS.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("read embedded schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewGoLoader(generic),
	)
	if err != nil {
		return fmt.Errorf("validate ruleset: %w", err)
	}

	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		issues = append(issues, fmt.Sprintf("%s: %s", violation.Field(), violation.Description()))
	}

	return &SchemaError{Issues: issues}
}
