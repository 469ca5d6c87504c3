package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// uint32ByteSize is the number of bytes in a uint32.
const uint32ByteSize = 4

// Block markers. Tiny or already-dense inputs can be incompressible, so raw
// storage is a first-class encoding, not a failure.
const (
	blockRaw  = 0x00
	blockLZ4  = 0x01
	markerLen = 1
)

var errBlockTruncated = errors.New("compressed block truncated")

// compressUint32s encodes data little-endian and LZ4-compresses it. The
// result starts with a one-byte marker; incompressible input is stored raw.
func compressUint32s(data []uint32) ([]byte, error) {
	buf := new(bytes.Buffer)

	writeErr := binary.Write(buf, binary.LittleEndian, data)
	if writeErr != nil {
		return nil, fmt.Errorf("encode uint32 block: %w", writeErr)
	}

	raw := buf.Bytes()
	compressed := make([]byte, markerLen+lz4.CompressBlockBound(len(raw)))

	written, err := lz4.CompressBlock(raw, compressed[markerLen:], nil)
	if err != nil || written == 0 || written >= len(raw) {
		out := make([]byte, markerLen+len(raw))
		out[0] = blockRaw
		copy(out[markerLen:], raw)

		return out, nil
	}

	compressed[0] = blockLZ4

	return compressed[:markerLen+written], nil
}

// decompressUint32s reverses compressUint32s. count must be the element
// count recorded at pack time.
func decompressUint32s(block []byte, count int) ([]uint32, error) {
	if len(block) < markerLen {
		return nil, errBlockTruncated
	}

	rawLen := count * uint32ByteSize

	var raw []byte

	switch block[0] {
	case blockRaw:
		raw = block[markerLen:]
		if len(raw) != rawLen {
			return nil, errBlockTruncated
		}
	case blockLZ4:
		raw = make([]byte, rawLen)

		n, err := lz4.UncompressBlock(block[markerLen:], raw)
		if err != nil {
			return nil, fmt.Errorf("decompress uint32 block: %w", err)
		}

		if n != rawLen {
			return nil, errBlockTruncated
		}
	default:
		return nil, fmt.Errorf("%w: unknown marker 0x%02x", errBlockTruncated, block[0])
	}

	result := make([]uint32, count)

	readErr := binary.Read(bytes.NewReader(raw), binary.LittleEndian, result)
	if readErr != nil {
		return nil, fmt.Errorf("decode uint32 block: %w", readErr)
	}

	return result, nil
}

// deltaEncode replaces each element with the difference from its
// predecessor, in place. Sorted sequences become small, repetitive values
// that compress better.
func deltaEncode(data []uint32) {
	for i := len(data) - 1; i > 0; i-- {
		data[i] -= data[i-1]
	}
}

// deltaDecode performs a prefix-sum to restore values encoded by
// deltaEncode, in place.
func deltaDecode(data []uint32) {
	for i := 1; i < len(data); i++ {
		data[i] += data[i-1]
	}
}
