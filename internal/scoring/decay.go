package scoring

import "math"

// DefaultDecayRate is the daily multiplicative decay applied to every
// memory's weight, and the base of the retrieval-recency factor.
const DefaultDecayRate = 0.995

// DecayFactor returns decayRate^daysSince, the ranking-only recency
// multiplier. It is never persisted; it only shapes one startTask query.
func DecayFactor(decayRate, daysSince float64) float64 {
	return math.Pow(decayRate, daysSince)
}

// DaysSince converts a (now, anchor) pair of unix seconds into the
// fractional number of days elapsed, used as DecayFactor's exponent.
func DaysSince(nowUnix, anchorUnix int64) float64 {
	return float64(nowUnix-anchorUnix) / 86400
}
