package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity_Identical(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-9)
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	a := []float32{1, 2}
	b := []float32{-1, -2}
	assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-9)
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0.01}
	b := []float32{2.2, 0.4, -0.9, 1.7}
	assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
}

func TestCosineSimilarity_Bounded(t *testing.T) {
	a := []float32{5, -3, 2}
	b := []float32{-1, 8, 0.5}
	score := CosineSimilarity(a, b)
	assert.GreaterOrEqual(t, score, -1.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}
	assert.Zero(t, CosineSimilarity(a, b))
	assert.Zero(t, CosineSimilarity(b, a))
}

func TestCosineSimilarity_MismatchedLength(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{1, 2}
	assert.Zero(t, CosineSimilarity(a, b))
}

func TestCosineSimilarity_NilVectors(t *testing.T) {
	assert.Zero(t, CosineSimilarity(nil, []float32{1}))
	assert.Zero(t, CosineSimilarity([]float32{1}, nil))
	assert.Zero(t, CosineSimilarity(nil, nil))
}
