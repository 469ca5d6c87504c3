// Package render turns resolved annotations into colored terminal output or
// standalone HTML. It trusts the resolver's contract: annotations arrive
// sorted by start offset and never overlap.
package render

import (
	"fmt"
	"io"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/safeconv"
)

// Terminal writes source to w with ANSI colors applied to annotated spans.
// Unannotated gaps pass through unstyled.
func Terminal(w io.Writer, source []byte, annotations []classify.Annotation, theme *Theme) error {
	if theme == nil {
		theme = DefaultTheme()
	}

	srcLen := safeconv.MustIntToUint32(len(source))

	var pos uint32

	for _, annotation := range annotations {
		span := annotation.Span
		if span.Start < pos || span.End > srcLen {
			continue
		}

		if span.Start > pos {
			if err := writePlain(w, source[pos:span.Start]); err != nil {
				return err
			}
		}

		text := source[span.Start:span.End]

		styled, ok := theme.Color(annotation.Category)
		if !ok {
			if err := writePlain(w, text); err != nil {
				return err
			}
		} else if _, err := styled.Fprint(w, string(text)); err != nil {
			return fmt.Errorf("render span: %w", err)
		}

		pos = span.End
	}

	if pos < srcLen {
		return writePlain(w, source[pos:])
	}

	return nil
}

// Plain writes source unmodified. This is the degraded mode used when no
// grammar is available for the document.
func Plain(w io.Writer, source []byte) error {
	return writePlain(w, source)
}

func writePlain(w io.Writer, chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	if _, err := w.Write(chunk); err != nil {
		return fmt.Errorf("render text: %w", err)
	}

	return nil
}
