package archive

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
)

// File extensions for supported codecs.
const (
	jsonExtension = ".json"
	gobExtension  = ".spanarc"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// Codec defines how an archive is serialized and deserialized.
type Codec interface {
	// Encode writes the archive to the writer.
	Encode(w io.Writer, ar *Archive) error
	// Decode reads the archive from the reader.
	Decode(r io.Reader, ar *Archive) error
	// Extension returns the file extension for this codec.
	Extension() string
}

// JSONCodec stores archives as JSON, mainly for inspection and tooling.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode using JSON encoding.
func (c *JSONCodec) Encode(w io.Writer, ar *Archive) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(ar)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using JSON decoding.
func (c *JSONCodec) Decode(r io.Reader, ar *Archive) error {
	decoder := json.NewDecoder(r)

	err := decoder.Decode(ar)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension for JSON files.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// GobCodec is the compact binary default.
type GobCodec struct{}

// NewGobCodec creates a gob codec.
func NewGobCodec() *GobCodec {
	return &GobCodec{}
}

// Encode implements Codec.Encode using gob encoding.
func (c *GobCodec) Encode(w io.Writer, ar *Archive) error {
	encoder := gob.NewEncoder(w)

	err := encoder.Encode(ar)
	if err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using gob decoding.
func (c *GobCodec) Decode(r io.Reader, ar *Archive) error {
	decoder := gob.NewDecoder(r)

	err := decoder.Decode(ar)
	if err != nil {
		return fmt.Errorf("gob decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension for archive files.
func (c *GobCodec) Extension() string {
	return gobExtension
}

// CodecForPath picks a codec from the file extension, defaulting to gob.
func CodecForPath(path string) Codec {
	if filepath.Ext(path) == jsonExtension {
		return NewJSONCodec()
	}

	return NewGobCodec()
}
