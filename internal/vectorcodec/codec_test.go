package vectorcodec

import (
	"math"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	vec := []float32{1.5, -2.25, 0, 3.333333}
	blob := Encode(vec)
	if len(blob) != len(vec)*BytesPerElement {
		t.Fatalf("expected %d bytes, got %d", len(vec)*BytesPerElement, len(blob))
	}
	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(vec) {
		t.Fatalf("expected %d elements, got %d", len(vec), len(got))
	}
	for i := range vec {
		if math.Abs(float64(got[i]-vec[i])) > 1e-6 {
			t.Errorf("element %d: want %v got %v", i, vec[i], got[i])
		}
	}
}

func TestDecodeRejectsMisalignedLength(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for length not a multiple of 4")
	}
}

func TestValidate(t *testing.T) {
	blob := Encode(make([]float32, 8))
	if err := Validate(blob, 8); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := Validate(blob, 4); err == nil {
		t.Fatal("expected error for dimension mismatch")
	}
	if err := Validate(nil, 8); err == nil {
		t.Fatal("expected error for empty blob against positive dims")
	}
}
