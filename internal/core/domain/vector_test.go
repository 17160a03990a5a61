package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity_Identical(t *testing.T) {
	score, err := CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3})

	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	score, err := CosineSimilarity([]float32{1, 0}, []float32{-1, 0})

	require.NoError(t, err)
	assert.InDelta(t, -1.0, score, 1e-9)
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	score, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})

	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 1e-9)
}

func TestCosineSimilarity_ScaleInvariant(t *testing.T) {
	a, err := CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6})

	require.NoError(t, err)
	assert.InDelta(t, 1.0, a, 1e-9)
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})

	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	score, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})

	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}
