package syntax

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// Lines is an index from byte offsets to line/column positions, built once per
// source document. Columns are available both as byte offsets and as UTF-16
// code units (the encoding the language server protocol mandates).
type Lines struct {
	source []byte
	starts []uint32
}

// NewLines builds the line index for the given source.
func NewLines(source []byte) *Lines {
	starts := make([]uint32, 1, len(source)/32+1)
	starts[0] = 0

	for idx, b := range source {
		if b == '\n' {
			starts = append(starts, uint32(idx)+1)
		}
	}

	return &Lines{source: source, starts: starts}
}

// Count returns the number of lines in the source.
func (lines *Lines) Count() int {
	return len(lines.starts)
}

// Position converts a byte offset into a zero-based (line, column) pair where
// the column is a byte offset within the line. Offsets past the end of the
// source clamp to the final position.
func (lines *Lines) Position(offset uint32) (line, col uint32) {
	if int(offset) > len(lines.source) {
		offset = uint32(len(lines.source))
	}

	idx := sort.Search(len(lines.starts), func(i int) bool {
		return lines.starts[i] > offset
	}) - 1

	return uint32(idx), offset - lines.starts[idx]
}

// UTF16Position converts a byte offset into a zero-based (line, column) pair
// where the column counts UTF-16 code units, as the language server protocol
// requires.
func (lines *Lines) UTF16Position(offset uint32) (line, col uint32) {
	line, byteCol := lines.Position(offset)
	start := lines.starts[line]

	segment := lines.source[start : start+byteCol]
	units := uint32(0)

	for len(segment) > 0 {
		r, size := utf8.DecodeRune(segment)
		units += uint32(len(utf16.Encode([]rune{r})))
		segment = segment[size:]
	}

	return line, units
}

// UTF16Offset converts a zero-based (line, UTF-16 column) pair back into a
// byte offset. Columns past the end of the line clamp to the line end; lines
// past the end of the source clamp to the source end.
func (lines *Lines) UTF16Offset(line, col uint32) uint32 {
	if int(line) >= len(lines.starts) {
		return uint32(len(lines.source))
	}

	span := lines.LineSpan(line)
	segment := lines.source[span.Start:span.End]
	offset := span.Start
	units := uint32(0)

	for len(segment) > 0 && units < col {
		r, size := utf8.DecodeRune(segment)
		units += uint32(len(utf16.Encode([]rune{r})))
		offset += uint32(size)
		segment = segment[size:]
	}

	return offset
}

// LineSpan returns the byte range of a line, excluding its trailing newline.
// Lines past the end of the source come back empty at the source end.
func (lines *Lines) LineSpan(line uint32) Span {
	if int(line) >= len(lines.starts) {
		end := uint32(len(lines.source))

		return Span{Start: end, End: end}
	}

	start := lines.starts[line]
	end := uint32(len(lines.source))

	if int(line)+1 < len(lines.starts) {
		end = lines.starts[line+1] - 1
	}

	return Span{Start: start, End: end}
}
