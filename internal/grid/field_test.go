package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewField(t *testing.T) {
	f, err := NewField([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 6.0, f.At(1, 2))

	scalar, err := NewField([]float64{7})
	require.NoError(t, err)
	assert.Empty(t, scalar.Shape)
}

func TestNewField_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		shape  []int
	}{
		{"count mismatch", make([]float64, 5), []int{2, 3}},
		{"negative dimension", make([]float64, 0), []int{-1, 3}},
		// 4611686018427387905*12 wraps around to 12 in int64.
		{"overflowing shape", make([]float64, 12), []int{4611686018427387905, 3, 4}},
		{"overflowing at the end", make([]float64, 1), []int{2, math.MaxInt/2 + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewField(tt.values, tt.shape...)
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestZeros_PanicsOnOverflow(t *testing.T) {
	assert.Panics(t, func() { Zeros(4611686018427387905, 3, 4) })
	assert.Len(t, Zeros(2, 0, 3).Values, 0)
}

func TestOverflowingFieldIsRejected(t *testing.T) {
	g := mustBuild(t, europeDescriptor)
	// Built directly, as a decoder filling the exported fields would.
	f := &Field{Shape: []int{4611686018427387905, 3, 4}, Values: make([]float64, 12)}

	_, err := g.NearestPoint(f, 50, 10)
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = g.Interpolate(f, g, OrderNearest)
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, _, err = g.LonLatBox(f, []float64{10, 52, 11.5, 50})
	assert.ErrorIs(t, err, ErrInvalidValue)
}
