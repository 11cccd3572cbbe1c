package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"scaled", []float32{1, 0}, []float32{5, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"length mismatch", []float32{1, 0}, []float32{1}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 1},
		{"empty", nil, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineDistance(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTopK(t *testing.T) {
	candidates := []Candidate{
		{Index: 0, Distance: 0.5},
		{Index: 1, Distance: 0.1},
		{Index: 2, Distance: 0.5},
		{Index: 3, Distance: 0.9},
	}

	top := TopK(candidates, 3)

	require.Len(t, top, 3)
	assert.Equal(t, 1, top[0].Index)
	assert.Equal(t, 0, top[1].Index)
	assert.Equal(t, 2, top[2].Index)
}

func TestTopK_FewerThanK(t *testing.T) {
	top := TopK([]Candidate{{Index: 0, Distance: 0.2}}, 5)
	assert.Len(t, top, 1)
}

func TestTopK_ZeroVectorRanksAsOrthogonal(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{Index: 0, Distance: CosineDistance(query, []float32{-1, 0.1})},
		{Index: 1, Distance: CosineDistance(query, []float32{0, 0})},
		{Index: 2, Distance: CosineDistance(query, []float32{1, 0.2})},
	}

	top := TopK(candidates, 3)

	require.Len(t, top, 3)
	assert.Equal(t, []int{2, 1, 0}, []int{top[0].Index, top[1].Index, top[2].Index})
}
