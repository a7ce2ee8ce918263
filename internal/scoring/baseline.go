// Package scoring holds the pure, deterministic credit-assignment algebra:
// running baseline statistics, task scoring, per-memory credit, EMA weight
// updates, category-based initial weights, and time decay. None of it
// touches storage or the clock directly — every function takes its inputs
// and returns a new value, which keeps it exhaustively table-testable.
package scoring

import (
	"encoding/json"
	"fmt"
	"math"
)

// ColdStartThreshold is the baseline.count below which TaskScore uses the
// cold-start heuristic instead of z-scores.
const ColdStartThreshold = 10

// Baseline is the running mean/variance of task outcome variates, kept as
// an immutable value object: every update returns a new Baseline rather
// than mutating in place.
type Baseline struct {
	Count int64 `json:"count"`

	MeanTokens          float64 `json:"meanTokens"`
	MeanErrors          float64 `json:"meanErrors"`
	MeanUserCorrections float64 `json:"meanUserCorrections"`

	M2Tokens          float64 `json:"m2Tokens"`
	M2Errors          float64 `json:"m2Errors"`
	M2UserCorrections float64 `json:"m2UserCorrections"`
}

// Update applies one Welford step for a finished task's (tokens, errors,
// userCorrections) and returns the new baseline. b is left unmodified.
func (b Baseline) Update(tokens, errors, userCorrections float64) Baseline {
	n := b.Count + 1
	next := Baseline{Count: n}
	next.MeanTokens, next.M2Tokens = welfordStep(b.MeanTokens, b.M2Tokens, tokens, n)
	next.MeanErrors, next.M2Errors = welfordStep(b.MeanErrors, b.M2Errors, errors, n)
	next.MeanUserCorrections, next.M2UserCorrections = welfordStep(b.MeanUserCorrections, b.M2UserCorrections, userCorrections, n)
	return next
}

// welfordStep applies Welford's online update to a single variate.
func welfordStep(mean, m2, x float64, n int64) (newMean, newM2 float64) {
	delta := x - mean
	newMean = mean + delta/float64(n)
	newM2 = m2 + delta*(x-newMean)
	return
}

// Stddev returns the sample standard deviation for a variate's accumulated
// M2 over n observations. Defined as 1 when n < 2, so a z-score against it
// collapses to the raw delta.
func Stddev(m2 float64, n int64) float64 {
	if n < 2 {
		return 1
	}
	return math.Sqrt(m2 / float64(n-1))
}

// ZScore returns (x - mean) / stddev, using Stddev's n<2 convention. A zero
// stddev (every observation identical) is treated as 1 as well, so the
// z-score collapses to the raw delta instead of dividing by zero.
func ZScore(x, mean, m2 float64, n int64) float64 {
	sd := Stddev(m2, n)
	if sd == 0 {
		sd = 1
	}
	return (x - mean) / sd
}

// Marshal serializes the baseline for storage under the meta table's
// "baseline" key.
func (b Baseline) Marshal() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("scoring: marshal baseline: %w", err)
	}
	return string(data), nil
}

// UnmarshalBaseline parses a serialized baseline. An empty string yields
// the zero-value baseline (count 0), matching a never-initialized meta row.
func UnmarshalBaseline(s string) (Baseline, error) {
	if s == "" {
		return Baseline{}, nil
	}
	var b Baseline
	if err := json.Unmarshal([]byte(s), &b); err != nil {
		return Baseline{}, fmt.Errorf("scoring: unmarshal baseline: %w", err)
	}
	return b, nil
}
