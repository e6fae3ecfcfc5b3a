package domain

import "math"

// CosineSimilarity computes dot(a,b) / (‖a‖·‖b‖) in float64 precision.
// Mismatched lengths, nil vectors, and zero-norm vectors score 0 rather
// than erroring: an unsearchable vector is simply never relevant.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
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
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
