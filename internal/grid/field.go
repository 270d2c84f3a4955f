package grid

import (
	"fmt"
	"math"
	"slices"
)

// Field is a dense row-major array of float64 values. The trailing
// LenCoords() dimensions of a field passed to a Grid are spatial; any
// dimensions before them (time, level, member) are carried through unchanged.
type Field struct {
	Shape  []int
	Values []float64
}

// NewField wraps values with the given shape.
func NewField(values []float64, shape ...int) (*Field, error) {
	n, err := shapeSize(shape)
	if err != nil {
		return nil, err
	}
	if n != len(values) {
		return nil, fmt.Errorf("%w: shape %v needs %d values, got %d", ErrInvalidValue, shape, n, len(values))
	}
	return &Field{Shape: slices.Clone(shape), Values: values}, nil
}

// Zeros returns a zero-filled field. It panics if the shape is invalid.
func Zeros(shape ...int) *Field {
	n, err := shapeSize(shape)
	if err != nil {
		panic(err)
	}
	return &Field{Shape: slices.Clone(shape), Values: make([]float64, n)}
}

// shapeSize returns the number of values a shape holds, rejecting negative
// dimensions and products that overflow int.
func shapeSize(shape []int) (int, error) {
	n := 1
	for _, s := range shape {
		if s < 0 {
			return 0, fmt.Errorf("%w: negative dimension %d in shape %v", ErrInvalidValue, s, shape)
		}
		if s != 0 && n > math.MaxInt/s {
			return 0, fmt.Errorf("%w: shape %v is too large", ErrInvalidValue, shape)
		}
		n *= s
	}
	return n, nil
}

func mustField(values []float64, shape ...int) *Field {
	f, err := NewField(values, shape...)
	if err != nil {
		panic(err)
	}
	return f
}

// Len returns the number of values.
func (f *Field) Len() int {
	return len(f.Values)
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	return &Field{Shape: slices.Clone(f.Shape), Values: slices.Clone(f.Values)}
}

// At returns the value at the given index, one entry per dimension.
func (f *Field) At(idx ...int) float64 {
	return f.Values[f.offset(idx)]
}

// Set stores v at the given index.
func (f *Field) Set(v float64, idx ...int) {
	f.Values[f.offset(idx)] = v
}

func (f *Field) offset(idx []int) int {
	if len(idx) != len(f.Shape) {
		panic(fmt.Sprintf("grid: index %v does not match shape %v", idx, f.Shape))
	}
	off := 0
	for i, n := range idx {
		if n < 0 || n >= f.Shape[i] {
			panic(fmt.Sprintf("grid: index %v out of range for shape %v", idx, f.Shape))
		}
		off = off*f.Shape[i] + n
	}
	return off
}

// splitSpatial checks that the trailing dims of f equal spatial and returns
// the leading shape, the number of leading slices and the size of one
// spatial slice.
func (f *Field) splitSpatial(spatial []int) (leading []int, nLead, nSpatial int, err error) {
	if f == nil {
		return nil, 0, 0, fmt.Errorf("%w: nil data", ErrInvalidValue)
	}
	k := len(f.Shape) - len(spatial)
	if k < 0 || !slices.Equal(f.Shape[k:], spatial) {
		return nil, 0, 0, fmt.Errorf("%w: data shape %v does not end in grid shape %v", ErrInvalidValue, f.Shape, spatial)
	}
	if nSpatial, err = shapeSize(spatial); err != nil {
		return nil, 0, 0, err
	}
	if nLead, err = shapeSize(f.Shape[:k]); err != nil {
		return nil, 0, 0, err
	}
	if nSpatial != 0 && nLead > math.MaxInt/nSpatial || nLead*nSpatial != len(f.Values) {
		return nil, 0, 0, fmt.Errorf("%w: data shape %v does not match %d values", ErrInvalidValue, f.Shape, len(f.Values))
	}
	return slices.Clone(f.Shape[:k]), nLead, nSpatial, nil
}
