package render

import (
	"fmt"
	"html"
	"io"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/safeconv"
)

// classPrefix namespaces the generated span classes.
const classPrefix = "sl-"

// htmlPalette maps categories to the colors emitted by StyleSheet.
//
//nolint:gochecknoglobals // Static palette, read-only after init.
var htmlPalette = map[classify.Category]string{
	classify.CategoryComment:     "#6a737d",
	classify.CategoryDoc:         "#6a737d",
	classify.CategoryString:      "#22863a",
	classify.CategoryEscape:      "#32a852",
	classify.CategoryNumber:      "#005cc5",
	classify.CategoryBoolean:     "#005cc5",
	classify.CategoryConstant:    "#005cc5",
	classify.CategoryKeyword:     "#d73a49",
	classify.CategoryOperator:    "#d73a49",
	classify.CategoryFunction:    "#6f42c1",
	classify.CategoryConstructor: "#6f42c1",
	classify.CategoryType:        "#e36209",
	classify.CategoryModule:      "#0366d6",
	classify.CategoryProperty:    "#0366d6",
	classify.CategoryLabel:       "#b31d28",
	classify.CategoryAnnotation:  "#b08800",
	classify.CategoryBracket:     "#24292e",
	classify.CategoryError:       "#cb2431",
}

// HTML writes source as a pre block with class-tagged spans for annotated
// text. Pair it with StyleSheet for a standalone page.
func HTML(w io.Writer, source []byte, annotations []classify.Annotation) error {
	if _, err := io.WriteString(w, `<pre class="spanlight">`); err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	srcLen := safeconv.MustIntToUint32(len(source))

	var pos uint32

	for _, annotation := range annotations {
		span := annotation.Span
		if span.Start < pos || span.End > srcLen {
			continue
		}

		if span.Start > pos {
			if err := writeEscaped(w, source[pos:span.Start]); err != nil {
				return err
			}
		}

		open := fmt.Sprintf(`<span class=%q>`, classPrefix+annotation.Category.String())
		if _, err := io.WriteString(w, open); err != nil {
			return fmt.Errorf("render html: %w", err)
		}

		if err := writeEscaped(w, source[span.Start:span.End]); err != nil {
			return err
		}

		if _, err := io.WriteString(w, "</span>"); err != nil {
			return fmt.Errorf("render html: %w", err)
		}

		pos = span.End
	}

	if pos < srcLen {
		if err := writeEscaped(w, source[pos:]); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "</pre>\n"); err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	return nil
}

// StyleSheet writes CSS rules covering every category class HTML can emit.
func StyleSheet(w io.Writer) error {
	if _, err := io.WriteString(w, ".spanlight { font-family: monospace; white-space: pre; }\n"); err != nil {
		return fmt.Errorf("render stylesheet: %w", err)
	}

	for _, category := range classify.Categories() {
		hex, ok := htmlPalette[category]
		if !ok {
			continue
		}

		rule := fmt.Sprintf(".%s%s { color: %s; }\n", classPrefix, category, hex)
		if _, err := io.WriteString(w, rule); err != nil {
			return fmt.Errorf("render stylesheet: %w", err)
		}
	}

	return nil
}

func writeEscaped(w io.Writer, chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	if _, err := io.WriteString(w, html.EscapeString(string(chunk))); err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	return nil
}
