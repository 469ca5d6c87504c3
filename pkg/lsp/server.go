// Package lsp provides a Language Server Protocol server that exposes the
// classification engine as semantic tokens, hovers, and syntax-error
// diagnostics over stdio.
package lsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/grammar"
	"github.com/spanlight/spanlight/pkg/ruleset"
	"github.com/spanlight/spanlight/pkg/syntax"
)

const serverName = "spanlight"

// fileScheme prefixes file URIs in textDocument identifiers.
const fileScheme = "file://"

// lspLanguageAliases maps LSP language identifiers onto grammar names where
// the two disagree.
//
//nolint:gochecknoglobals // Static lookup table.
var lspLanguageAliases = map[string]string{
	"shellscript":     "bash",
	"typescriptreact": "typescript",
	"javascriptreact": "javascript",
}

// document is one open text document with its detected language.
type document struct {
	text     string
	language string
}

// DocumentStore is a thread-safe store for open documents keyed by URI.
type DocumentStore struct {
	documents map[string]document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]document),
	}
}

// Set stores document content and language for the given URI.
func (ds *DocumentStore) Set(uri, text, language string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = document{text: text, language: language}
}

// SetText replaces document content, keeping the detected language.
func (ds *DocumentStore) SetText(uri, text string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	doc := ds.documents[uri]
	doc.text = text
	ds.documents[uri] = doc
}

// Get retrieves a document by URI.
func (ds *DocumentStore) Get(uri string) (document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// Delete removes a document by URI.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// Server implements the classification LSP server.
type Server struct {
	store   *DocumentStore
	tables  *ruleset.TableCache
	logger  *slog.Logger
	version string
	handler protocol.Handler
}

// NewServer creates an LSP server that activates the given feature groups.
// Nil groups means every group the ruleset declares.
func NewServer(groups []string, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		store:   NewDocumentStore(),
		tables:  ruleset.NewTableCache(groups),
		logger:  logger,
		version: version,
	}

	srv.handler = protocol.Handler{
		Initialize:                     srv.initialize,
		Initialized:                    srv.initialized,
		Shutdown:                       srv.shutdown,
		SetTrace:                       srv.setTrace,
		TextDocumentDidOpen:            srv.didOpen,
		TextDocumentDidChange:          srv.didChange,
		TextDocumentDidSave:            srv.didSave,
		TextDocumentDidClose:           srv.didClose,
		TextDocumentHover:              srv.hover,
		TextDocumentSemanticTokensFull: srv.semanticTokensFull,
	}

	return srv
}

// WithRulesetDir makes the server prefer ruleset files from dir over the
// embedded ones. Empty dir leaves the embedded rulesets in place.
func (srv *Server) WithRulesetDir(dir string) *Server {
	srv.tables = srv.tables.WithDir(dir)
	return srv
}

// Run starts the LSP server on stdio and blocks until the client disconnects.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	err := lspServer.RunStdio()
	if err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}

	return nil
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: tokenLegend(),
		Full:   true,
	}

	version := srv.version

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text
	language := detectLanguage(uri, params.TextDocument.LanguageID, text)

	srv.store.Set(uri, text, language)
	srv.publishDiagnostics(ctx, uri)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	if len(params.ContentChanges) > 0 {
		if change, changeOK := params.ContentChanges[0].(map[string]any); changeOK {
			if text, textOK := change["text"].(string); textOK {
				srv.store.SetText(uri, text)
				srv.publishDiagnostics(ctx, uri)
			}
		}
	}

	return nil
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI

	if _, ok := srv.store.Get(uri); ok {
		srv.publishDiagnostics(ctx, uri)
	}

	return nil
}

func (srv *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	srv.store.Delete(uri)

	return nil
}

func (srv *Server) semanticTokensFull(
	_ *glsp.Context, params *protocol.SemanticTokensParams,
) (*protocol.SemanticTokens, error) {
	source, annotations, ok := srv.classifyDocument(params.TextDocument.URI)
	if !ok {
		return &protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
	}

	return &protocol.SemanticTokens{Data: encodeTokens(source, annotations)}, nil
}

func (srv *Server) hover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	source, annotations, ok := srv.classifyDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil // Protocol expects null hover when nothing applies.
	}

	lines := syntax.NewLines(source)
	offset := lines.UTF16Offset(uint32(params.Position.Line), uint32(params.Position.Character))

	annotation, found := annotationAt(annotations, offset)
	if !found {
		return nil, nil //nolint:nilnil // Protocol expects null hover when nothing applies.
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: fmt.Sprintf("`%s` (%d bytes)", annotation.Category, annotation.Span.Len()),
		},
		Range: spanRange(lines, annotation.Span),
	}, nil
}

// spanRange converts a byte span into a protocol range.
func spanRange(lines *syntax.Lines, span syntax.Span) *protocol.Range {
	startLine, startCol := lines.UTF16Position(span.Start)
	endLine, endCol := lines.UTF16Position(span.End)

	return &protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(startLine), Character: protocol.UInteger(startCol)},
		End:   protocol.Position{Line: protocol.UInteger(endLine), Character: protocol.UInteger(endCol)},
	}
}

// classifyDocument runs the full pipeline for an open document. The ok result
// is false when the document is unknown, its grammar is unavailable, or its
// ruleset refuses to load; semantic handlers degrade to "no annotations" in
// every such case.
func (srv *Server) classifyDocument(uri string) ([]byte, []classify.Annotation, bool) {
	doc, ok := srv.store.Get(uri)
	if !ok || doc.language == "" {
		return nil, nil, false
	}

	entry, err := srv.tables.Table(doc.language)
	if err != nil {
		srv.logger.Error("ruleset rejected", "language", doc.language, "error", err)

		return nil, nil, false
	}

	parser, err := grammar.SharedParser(doc.language)
	if err != nil {
		if !errors.Is(err, grammar.ErrGrammarUnavailable) {
			srv.logger.Warn("parser init failed", "language", doc.language, "error", err)
		}

		return nil, nil, false
	}

	source := []byte(doc.text)

	tree, err := parser.Parse(context.Background(), source)
	if err != nil {
		srv.logger.Warn("parse failed", "language", doc.language, "error", err)

		return nil, nil, false
	}

	result := classify.Classify(tree, entry.Table, entry.Active)

	return source, result.Resolved, true
}

// annotationAt returns the annotation covering the byte offset. Annotations
// are sorted by start and non-overlapping, so a binary scan would do; linear
// is fine at document scale.
func annotationAt(annotations []classify.Annotation, offset uint32) (classify.Annotation, bool) {
	for _, annotation := range annotations {
		if offset >= annotation.Span.Start && offset < annotation.Span.End {
			return annotation, true
		}

		if annotation.Span.Start > offset {
			break
		}
	}

	return classify.Annotation{}, false
}

// detectLanguage resolves a grammar name from the client's language ID,
// falling back to filename/content detection.
func detectLanguage(uri, languageID, text string) string {
	name := strings.ToLower(languageID)
	if alias, ok := lspLanguageAliases[name]; ok {
		name = alias
	}

	if grammar.Supported(name) {
		return name
	}

	return grammar.Detect(strings.TrimPrefix(uri, fileScheme), []byte(text))
}

// publishDiagnostics reports parse-error spans for the document. The grammar
// marks unparsable regions with ERROR nodes; those classify into the error
// category and surface here as syntax diagnostics.
func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	source, annotations, ok := srv.classifyDocument(uri)

	diagnostics := []protocol.Diagnostic{}
	if ok {
		diagnostics = errorDiagnostics(source, annotations)
	}

	ctx.Notify("textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func errorDiagnostics(source []byte, annotations []classify.Annotation) []protocol.Diagnostic {
	lines := syntax.NewLines(source)
	severity := protocol.DiagnosticSeverityError
	sourceName := serverName
	diagnostics := []protocol.Diagnostic{}

	for _, annotation := range annotations {
		if annotation.Category != classify.CategoryError {
			continue
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    *spanRange(lines, annotation.Span),
			Severity: &severity,
			Source:   &sourceName,
			Message:  "syntax error",
		})
	}

	return diagnostics
}
