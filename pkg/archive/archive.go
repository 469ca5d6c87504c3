// Package archive stores resolved annotations compactly on disk. Span starts
// are delta encoded, span lengths and category references are stored as
// dictionary-indexed streams, and every stream is LZ4 compressed. A source
// checksum per document makes staleness detection cheap.
package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/safeconv"
	"github.com/spanlight/spanlight/pkg/syntax"
)

// Version is the current archive format version.
const Version = 1

// tmpExtension marks in-progress archive writes.
const tmpExtension = ".tmp"

// Sentinel errors for archive integrity.
var (
	ErrVersionMismatch = errors.New("archive version mismatch")
	ErrCorruptDocument = errors.New("corrupt archive document")
)

// Document is the packed form of one classified file.
type Document struct {
	Path       string   `json:"path"`
	Language   string   `json:"language"`
	Checksum   string   `json:"checksum"`
	Categories []string `json:"categories"`
	Count      int      `json:"count"`
	Starts     []byte   `json:"starts"`
	Lengths    []byte   `json:"lengths"`
	Refs       []byte   `json:"refs"`
}

// Archive is a collection of packed documents.
type Archive struct {
	Version   int         `json:"version"`
	Documents []*Document `json:"documents"`
}

// New returns an empty archive at the current version.
func New() *Archive {
	return &Archive{Version: Version}
}

// Add appends a document, replacing any existing entry for the same path.
func (ar *Archive) Add(doc *Document) {
	for i, existing := range ar.Documents {
		if existing.Path == doc.Path {
			ar.Documents[i] = doc

			return
		}
	}

	ar.Documents = append(ar.Documents, doc)
}

// Find returns the document for path, or nil.
func (ar *Archive) Find(path string) *Document {
	for _, doc := range ar.Documents {
		if doc.Path == path {
			return doc
		}
	}

	return nil
}

// Checksum returns the hex checksum used for staleness detection.
func Checksum(source []byte) string {
	sum := sha256.Sum256(source)

	return hex.EncodeToString(sum[:])
}

// Pack compresses one document's resolved annotations.
func Pack(path, language string, source []byte, annotations []classify.Annotation) (*Document, error) {
	count := len(annotations)

	starts := make([]uint32, count)
	lengths := make([]uint32, count)
	refs := make([]uint32, count)

	dictionary := make([]string, 0, 8)
	dictIndex := make(map[classify.Category]uint32, 8)

	for i, annotation := range annotations {
		starts[i] = annotation.Span.Start
		lengths[i] = annotation.Span.Len()

		ref, ok := dictIndex[annotation.Category]
		if !ok {
			ref = safeconv.MustIntToUint32(len(dictionary))
			dictIndex[annotation.Category] = ref
			dictionary = append(dictionary, annotation.Category.String())
		}

		refs[i] = ref
	}

	// Resolver output is sorted by start, so deltas stay small.
	deltaEncode(starts)

	packedStarts, err := compressUint32s(starts)
	if err != nil {
		return nil, err
	}

	packedLengths, err := compressUint32s(lengths)
	if err != nil {
		return nil, err
	}

	packedRefs, err := compressUint32s(refs)
	if err != nil {
		return nil, err
	}

	return &Document{
		Path:       path,
		Language:   language,
		Checksum:   Checksum(source),
		Categories: dictionary,
		Count:      count,
		Starts:     packedStarts,
		Lengths:    packedLengths,
		Refs:       packedRefs,
	}, nil
}

// Stale reports whether source no longer matches the packed document.
func (doc *Document) Stale(source []byte) bool {
	return doc.Checksum != Checksum(source)
}

// Unpack restores the document's annotations.
func (doc *Document) Unpack() ([]classify.Annotation, error) {
	starts, err := decompressUint32s(doc.Starts, doc.Count)
	if err != nil {
		return nil, fmt.Errorf("%w: %s starts: %w", ErrCorruptDocument, doc.Path, err)
	}

	lengths, err := decompressUint32s(doc.Lengths, doc.Count)
	if err != nil {
		return nil, fmt.Errorf("%w: %s lengths: %w", ErrCorruptDocument, doc.Path, err)
	}

	refs, err := decompressUint32s(doc.Refs, doc.Count)
	if err != nil {
		return nil, fmt.Errorf("%w: %s refs: %w", ErrCorruptDocument, doc.Path, err)
	}

	deltaDecode(starts)

	annotations := make([]classify.Annotation, doc.Count)

	for i := range doc.Count {
		if int(refs[i]) >= len(doc.Categories) {
			return nil, fmt.Errorf("%w: %s: category ref %d out of range", ErrCorruptDocument, doc.Path, refs[i])
		}

		annotations[i] = classify.Annotation{
			Span:     syntax.Span{Start: starts[i], End: starts[i] + lengths[i]},
			Category: classify.Category(doc.Categories[refs[i]]),
		}
	}

	return annotations, nil
}

// Save writes the archive atomically, sorted by path for stable output.
func Save(path string, codec Codec, ar *Archive) error {
	sort.Slice(ar.Documents, func(i, j int) bool {
		return ar.Documents[i].Path < ar.Documents[j].Path
	})

	dir := filepath.Dir(path)

	mkErr := os.MkdirAll(dir, 0o750)
	if mkErr != nil {
		return fmt.Errorf("create archive dir: %w", mkErr)
	}

	tmpPath := path + tmpExtension

	file, err := os.Create(tmpPath) //nolint:gosec // caller-chosen output path
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}

	encErr := codec.Encode(file, ar)

	closeErr := file.Close()

	if encErr != nil || closeErr != nil {
		_ = os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup

		if encErr != nil {
			return fmt.Errorf("encode archive: %w", encErr)
		}

		return fmt.Errorf("close archive file: %w", closeErr)
	}

	renameErr := os.Rename(tmpPath, path)
	if renameErr != nil {
		_ = os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup

		return fmt.Errorf("replace archive file: %w", renameErr)
	}

	return nil
}

// Load reads an archive and checks its version.
func Load(path string, codec Codec) (*Archive, error) {
	file, err := os.Open(path) //nolint:gosec // caller-chosen input path
	if err != nil {
		return nil, fmt.Errorf("open archive file: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only close

	ar := &Archive{}

	decErr := codec.Decode(file, ar)
	if decErr != nil {
		return nil, fmt.Errorf("decode archive: %w", decErr)
	}

	if ar.Version != Version {
		return nil, fmt.Errorf("%w: file has v%d, tool reads v%d", ErrVersionMismatch, ar.Version, Version)
	}

	return ar, nil
}
