package embedding

import (
	"fmt"
	"math"
)

// Cosine computes the cosine similarity between two vectors, in [-1, 1].
// It does not assume unit-length inputs and always divides by the product of
// norms. A zero-magnitude vector on either side yields 0. The only error is a
// dimension mismatch.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
