package store

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"

	sqlite "modernc.org/sqlite"
)

func init() {
	registerVectorFunctions()
}

// registerVectorFunctions installs the SQL-level vector primitives memelord's
// retrieval queries depend on: a vector32 validating pass-through (the
// "configured vector type" wrapper every query applies to both sides of a
// comparison) and vector_distance_cos, the cosine distance used for ranking.
// Both are pure functions of their arguments, so they register as
// deterministic: SQLite is free to cache or reorder calls.
func registerVectorFunctions() {
	_ = sqlite.RegisterDeterministicScalarFunction("vector32", 1, vector32)
	_ = sqlite.RegisterDeterministicScalarFunction("vector_distance_cos", 2, vectorDistanceCos)
	// decay_pow is the ranking query's exponentiation primitive: core SQLite
	// has no built-in POWER/pow() unless compiled with math functions
	// enabled, so the retrieval-recency factor (decayRate^days) gets its
	// own small scalar function rather than depending on that build flag.
	_ = sqlite.RegisterDeterministicScalarFunction("decay_pow", 2, decayPow)
}

func decayPow(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("decay_pow expects 2 arguments")
	}
	base, err := asFloat(args[0])
	if err != nil {
		return nil, err
	}
	exp, err := asFloat(args[1])
	if err != nil {
		return nil, err
	}
	return math.Pow(base, exp), nil
}

func asFloat(v driver.Value) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("decay_pow: unsupported type %T", v)
	}
}

// vector32 validates that its argument is a well-formed little-endian
// float32 blob (length a multiple of 4) and passes it through unchanged.
// Retrieval SQL wraps every embedding column reference in this function so
// that a config pointed at an unimplemented vector type (vector64/8/1) fails
// loudly at query time rather than silently comparing raw bytes; memelord
// itself never registers those other names, so using them is a validation
// error long before the query runs (see config.Config.Validate).
func vector32(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("vector32 expects 1 argument")
	}
	blob, err := asBlob(args[0])
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector32: blob length %d is not a multiple of 4", len(blob))
	}
	return blob, nil
}

// vectorDistanceCos returns 1 - cosine_similarity(a, b), the "distance" used
// throughout ranking (score factor is 1 - distance). An empty or
// zero-magnitude vector on either side yields distance 1 (similarity 0)
// rather than a NaN.
func vectorDistanceCos(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("vector_distance_cos expects 2 arguments")
	}
	a, err := decodeFloat32(args[0])
	if err != nil {
		return nil, err
	}
	b, err := decodeFloat32(args[1])
	if err != nil {
		return nil, err
	}
	if len(a) == 0 || len(b) == 0 {
		return float64(1), nil
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("vector_distance_cos: dimension mismatch %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		af, bf := float64(a[i]), float64(b[i])
		dot += af * bf
		na += af * af
		nb += bf * bf
	}
	if na == 0 || nb == 0 {
		return float64(1), nil
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb)), nil
}

// decodeFloat32 converts a SQL value holding a raw little-endian float32
// blob (or an already-typed slice, for in-process callers) into []float32.
func decodeFloat32(v driver.Value) ([]float32, error) {
	if v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case []byte:
		if len(x)%4 != 0 {
			return nil, fmt.Errorf("vector_distance_cos: blob length %d not multiple of 4", len(x))
		}
		out := make([]float32, len(x)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(x[i*4:]))
		}
		return out, nil
	case string:
		return decodeFloat32([]byte(x))
	case []float32:
		return x, nil
	case []float64:
		out := make([]float32, len(x))
		for i, f := range x {
			out[i] = float32(f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("vector_distance_cos: unsupported type %T", v)
	}
}

func asBlob(v driver.Value) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	default:
		return nil, fmt.Errorf("vector32: unsupported type %T", v)
	}
}
