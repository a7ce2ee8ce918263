// Package vectorcodec encodes and decodes the raw little-endian float32
// vector representation shared by the embedding, store, and scoring layers.
// The wire format is fixed: readers and writers must not widen, narrow, or
// byte-swap it.
package vectorcodec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// BytesPerElement is the width of one vector component (float32).
const BytesPerElement = 4

// Encode converts vec into its raw little-endian byte representation.
func Encode(vec []float32) []byte {
	buf := make([]byte, len(vec)*BytesPerElement)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*BytesPerElement:], math.Float32bits(f))
	}
	return buf
}

// Decode converts a raw little-endian byte blob back into a float32 slice.
// It returns an error if the blob length is not a multiple of 4.
func Decode(blob []byte) ([]float32, error) {
	if len(blob)%BytesPerElement != 0 {
		return nil, fmt.Errorf("vectorcodec: blob length %d not a multiple of %d", len(blob), BytesPerElement)
	}
	out := make([]float32, len(blob)/BytesPerElement)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*BytesPerElement:]))
	}
	return out, nil
}

// Validate reports whether blob is a well-formed vector of exactly dims
// elements. A zero-length blob is never valid here; callers that treat an
// empty blob as NULL must check length before calling Validate.
func Validate(blob []byte, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("vectorcodec: dims must be positive, got %d", dims)
	}
	want := dims * BytesPerElement
	if len(blob) != want {
		return fmt.Errorf("vectorcodec: blob length %d, expected %d (dims=%d)", len(blob), want, dims)
	}
	return nil
}
