package embedding

import (
	"context"
	"math"
)

// DeterministicEngine is a content-reflective, dependency-free embedder for
// tests and demos: it maps characters to vector positions by byte value and
// L2-normalizes the result, so related text produces related vectors
// without calling out to a model.
type DeterministicEngine struct {
	dims int
}

// NewDeterministicEngine returns a DeterministicEngine producing vectors of
// length dims.
func NewDeterministicEngine(dims int) *DeterministicEngine {
	return &DeterministicEngine{dims: dims}
}

func (e *DeterministicEngine) Name() string { return "deterministic" }

func (e *DeterministicEngine) Dimensions() int { return e.dims }

// Embed maps each byte of text into vec[b%dims] += 1, then L2-normalizes.
// Identical substrings produce identical contributions, so overlapping
// text yields cosine-similar vectors — enough to exercise ranking in tests
// without a real model.
func (e *DeterministicEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	for i := 0; i < len(text); i++ {
		vec[int(text[i])%e.dims] += 1
	}
	normalize(vec)
	return vec, nil
}

func normalize(vec []float32) {
	var sumSq float64
	for _, f := range vec {
		sumSq += float64(f) * float64(f)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range vec {
		vec[i] /= norm
	}
}
