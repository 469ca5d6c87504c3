package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/syntax"
)

// tokenStride is the number of integers per token in the semantic tokens
// wire encoding.
const tokenStride = 5

// categoryIndex maps each category onto its position in the token legend.
// The legend reuses the category names directly; clients theme the ones they
// recognize and ignore the rest.
//
//nolint:gochecknoglobals // Derived from the closed category enumeration.
var categoryIndex = func() map[classify.Category]uint32 {
	index := make(map[classify.Category]uint32)
	for idx, category := range classify.Categories() {
		index[category] = uint32(idx)
	}

	return index
}()

// tokenLegend returns the semantic tokens legend advertised at initialize.
// Token type order must match categoryIndex for the lifetime of the session.
func tokenLegend() protocol.SemanticTokensLegend {
	categories := classify.Categories()
	types := make([]string, len(categories))

	for idx, category := range categories {
		types[idx] = string(category)
	}

	return protocol.SemanticTokensLegend{
		TokenTypes:     types,
		TokenModifiers: []string{},
	}
}

// encodeTokens flattens annotations into the LSP semantic tokens delta
// encoding: five integers per token, lines and start characters relative to
// the previous token, lengths in UTF-16 code units. Tokens spanning multiple
// lines are split per line, since deltas cannot express them.
func encodeTokens(source []byte, annotations []classify.Annotation) []protocol.UInteger {
	lines := syntax.NewLines(source)
	data := make([]protocol.UInteger, 0, len(annotations)*tokenStride)

	prevLine, prevStart := uint32(0), uint32(0)

	for _, annotation := range annotations {
		typeIndex, known := categoryIndex[annotation.Category]
		if !known {
			continue
		}

		startLine, startCol := lines.UTF16Position(annotation.Span.Start)
		endLine, endCol := lines.UTF16Position(annotation.Span.End)

		for line := startLine; line <= endLine; line++ {
			col := uint32(0)
			if line == startLine {
				col = startCol
			}

			length := lineSegmentLength(lines, line, col, endLine, endCol)
			if length == 0 {
				continue
			}

			deltaLine := line - prevLine
			deltaStart := col

			if deltaLine == 0 {
				deltaStart = col - prevStart
			}

			data = append(data,
				protocol.UInteger(deltaLine),
				protocol.UInteger(deltaStart),
				protocol.UInteger(length),
				protocol.UInteger(typeIndex),
				0,
			)

			prevLine, prevStart = line, col
		}
	}

	return data
}

// lineSegmentLength returns the UTF-16 length of the token segment on one
// line: up to endCol on the final line, to the end of the line otherwise.
func lineSegmentLength(lines *syntax.Lines, line, col, endLine, endCol uint32) uint32 {
	if line == endLine {
		if endCol <= col {
			return 0
		}

		return endCol - col
	}

	_, lineEndCol := lines.UTF16Position(lines.LineSpan(line).End)
	if lineEndCol <= col {
		return 0
	}

	return lineEndCol - col
}
