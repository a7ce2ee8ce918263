package scoring

import (
	"math"
	"testing"
)

func TestWelfordMatchesBatchMean(t *testing.T) {
	samples := []float64{12, 7, 19, 3, 45, 22, 8, 14, 31, 2, 9, 17}

	var b Baseline
	for _, x := range samples {
		b = b.Update(x, 0, 0)
	}

	var sum float64
	for _, x := range samples {
		sum += x
	}
	batchMean := sum / float64(len(samples))

	if rel := math.Abs(b.MeanTokens-batchMean) / batchMean; rel > 1e-9 {
		t.Fatalf("welford mean %v vs batch mean %v, relative error %v", b.MeanTokens, batchMean, rel)
	}
	if b.Count != int64(len(samples)) {
		t.Fatalf("expected count %d, got %d", len(samples), b.Count)
	}
}

func TestWelfordVarianceMatchesBatch(t *testing.T) {
	samples := []float64{10, 20, 30, 40, 50}
	var b Baseline
	for _, x := range samples {
		b = b.Update(x, 0, 0)
	}

	mean := 30.0
	var sumSq float64
	for _, x := range samples {
		sumSq += (x - mean) * (x - mean)
	}
	wantVariance := sumSq / float64(len(samples)-1)
	gotVariance := b.M2Tokens / float64(b.Count-1)

	if rel := math.Abs(gotVariance-wantVariance) / wantVariance; rel > 1e-9 {
		t.Fatalf("welford variance %v vs batch variance %v, relative error %v", gotVariance, wantVariance, rel)
	}
}

func TestStddevDefinedAsOneBelowTwoSamples(t *testing.T) {
	if got := Stddev(0, 0); got != 1 {
		t.Errorf("n=0: want 1, got %v", got)
	}
	if got := Stddev(0, 1); got != 1 {
		t.Errorf("n=1: want 1, got %v", got)
	}
}

func TestBaselineMarshalRoundTrip(t *testing.T) {
	b := Baseline{Count: 3, MeanTokens: 100.5, M2Errors: 4.2}
	s, err := b.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalBaseline(s)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != b {
		t.Fatalf("round trip mismatch: want %+v got %+v", b, got)
	}
}

func TestUnmarshalBaselineEmptyIsZeroValue(t *testing.T) {
	got, err := UnmarshalBaseline("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Count != 0 {
		t.Fatalf("expected zero-value baseline, got %+v", got)
	}
}
