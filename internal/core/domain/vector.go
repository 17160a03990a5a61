package domain

import "math"

// CosineSimilarity computes dot(a,b) / (|a|*|b|) for two vectors of equal
// length. It returns ErrDimensionMismatch when the lengths differ and 0
// when either vector has zero magnitude. A score of exactly 0 for a
// present embedding is legitimate (orthogonal vectors) and is distinct
// from the "no embedding" case, which callers must filter out before
// scoring.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
