package embedding_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"realty-rag/internal/embedding"
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestNormalizeUnitNorm(t *testing.T) {
	v := embedding.Normalize([]float32{3, 4})
	assert.InDelta(t, 1.0, norm(v), 1e-6)
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)
}

func TestNormalizeZeroVector(t *testing.T) {
	v := embedding.Normalize([]float32{0, 0, 0})
	for _, x := range v {
		assert.False(t, math.IsNaN(float64(x)))
		assert.Equal(t, float32(0), x)
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	in := []float32{0.25, -0.5, 1.5}
	a := embedding.Normalize(in)
	b := embedding.Normalize(in)
	assert.Equal(t, a, b)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := []float32{2, 0}
	_ = embedding.Normalize(in)
	assert.Equal(t, []float32{2, 0}, in)
}
