// Package interp resamples values given on a rectilinear grid with strictly
// increasing axes.
package interp

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// epsilon is the tolerance used when testing whether a point lies on or
// inside the grid.
const epsilon = 1e-9

// Method selects the resampling kernel.
type Method int

const (
	// Nearest picks the value of the closest grid node.
	Nearest Method = iota
	// Bilinear weights the four surrounding grid nodes.
	Bilinear
)

func (m Method) String() string {
	switch m {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// GridCell represents a cell in a regular grid with four corner values.
type GridCell struct {
	// Corner coordinates (forming a rectangle).
	X0, X1 float64 // X boundaries (e.g., longitude).
	Y0, Y1 float64 // Y boundaries (e.g., latitude).

	// Values at the four corners:
	// V00: value at (X0, Y0).
	// V10: value at (X1, Y0).
	// V01: value at (X0, Y1).
	// V11: value at (X1, Y1).
	V00, V10, V01, V11 float64
}

// BilinearInterpolate performs bilinear interpolation within a grid cell.
//
//	f(x,y) ≈ (1-t)(1-u)f(x0,y0) + t(1-u)f(x1,y0) + (1-t)u*f(x0,y1) + tu*f(x1,y1)
//
// where t = (x - x0) / (x1 - x0) and u = (y - y0) / (y1 - y0). Corners with a
// zero weight do not contribute, so a point on a node returns that node's
// value even if a neighbour is NaN.
func BilinearInterpolate(cell GridCell, x, y float64) (float64, error) {
	if cell.X1 <= cell.X0 {
		return 0, fmt.Errorf("invalid grid cell: X1 must be > X0")
	}
	if cell.Y1 <= cell.Y0 {
		return 0, fmt.Errorf("invalid grid cell: Y1 must be > Y0")
	}

	if x < cell.X0-epsilon || x > cell.X1+epsilon {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid cell [%.6f, %.6f]", x, cell.X0, cell.X1)
	}
	if y < cell.Y0-epsilon || y > cell.Y1+epsilon {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid cell [%.6f, %.6f]", y, cell.Y0, cell.Y1)
	}

	t := math.Max(0, math.Min(1, (x-cell.X0)/(cell.X1-cell.X0)))
	u := math.Max(0, math.Min(1, (y-cell.Y0)/(cell.Y1-cell.Y0)))

	weights := [4]float64{(1 - t) * (1 - u), t * (1 - u), (1 - t) * u, t * u}
	values := [4]float64{cell.V00, cell.V10, cell.V01, cell.V11}
	result := 0.0
	for i, w := range weights {
		if w == 0 {
			continue
		}
		result += w * values[i]
	}
	return result, nil
}

// Grid2D represents a rectilinear 2D grid for interpolation.
type Grid2D struct {
	X      []float64   // X coordinates (e.g., longitudes).
	Y      []float64   // Y coordinates (e.g., latitudes).
	Values [][]float64 // Values[i][j] corresponds to (X[j], Y[i]).
}

// NewGrid2D wraps a flat row-major slice of len(y)*len(x) values. Rows share
// the backing array of values.
func NewGrid2D(x, y, values []float64) (*Grid2D, error) {
	if len(values) != len(x)*len(y) {
		return nil, fmt.Errorf("grid of %d x %d needs %d values, got %d", len(y), len(x), len(x)*len(y), len(values))
	}
	rows := make([][]float64, len(y))
	for i := range rows {
		rows[i] = values[i*len(x) : (i+1)*len(x)]
	}
	return &Grid2D{X: x, Y: y, Values: rows}, nil
}

// Validate checks that the grid can be used for bilinear interpolation.
func (g *Grid2D) Validate() error {
	return g.validate(2)
}

func (g *Grid2D) validate(minPoints int) error {
	if len(g.X) < minPoints {
		return fmt.Errorf("grid must have at least %d X coordinates", minPoints)
	}
	if len(g.Y) < minPoints {
		return fmt.Errorf("grid must have at least %d Y coordinates", minPoints)
	}
	if len(g.Values) != len(g.Y) {
		return fmt.Errorf("number of value rows (%d) must match Y coordinates (%d)", len(g.Values), len(g.Y))
	}
	for i, row := range g.Values {
		if len(row) != len(g.X) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(g.X))
		}
	}
	if !strictlyIncreasing(g.X) {
		return fmt.Errorf("X coordinates must be strictly increasing")
	}
	if !strictlyIncreasing(g.Y) {
		return fmt.Errorf("Y coordinates must be strictly increasing")
	}
	return nil
}

func strictlyIncreasing(axis []float64) bool {
	for i := 1; i < len(axis); i++ {
		if !(axis[i] > axis[i-1]) {
			return false
		}
	}
	return true
}

// Contains reports whether (x, y) lies within the grid extent.
func (g *Grid2D) Contains(x, y float64) bool {
	if len(g.X) == 0 || len(g.Y) == 0 {
		return false
	}
	return x >= g.X[0]-epsilon && x <= g.X[len(g.X)-1]+epsilon &&
		y >= g.Y[0]-epsilon && y <= g.Y[len(g.Y)-1]+epsilon
}

// InterpolateAt performs bilinear interpolation at a given point.
func (g *Grid2D) InterpolateAt(x, y float64) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("invalid grid: %w", err)
	}
	return g.bilinear(x, y)
}

func (g *Grid2D) bilinear(x, y float64) (float64, error) {
	xIdx := cellIndex(g.X, x)
	if xIdx < 0 {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid range [%.6f, %.6f]", x, g.X[0], g.X[len(g.X)-1])
	}
	yIdx := cellIndex(g.Y, y)
	if yIdx < 0 {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid range [%.6f, %.6f]", y, g.Y[0], g.Y[len(g.Y)-1])
	}

	cell := GridCell{
		X0:  g.X[xIdx],
		X1:  g.X[xIdx+1],
		Y0:  g.Y[yIdx],
		Y1:  g.Y[yIdx+1],
		V00: g.Values[yIdx][xIdx],
		V10: g.Values[yIdx][xIdx+1],
		V01: g.Values[yIdx+1][xIdx],
		V11: g.Values[yIdx+1][xIdx+1],
	}
	return BilinearInterpolate(cell, x, y)
}

// cellIndex returns i such that axis[i] <= v <= axis[i+1], or -1 when v lies
// outside the axis.
func cellIndex(axis []float64, v float64) int {
	n := len(axis)
	if n < 2 || v < axis[0]-epsilon || v > axis[n-1]+epsilon {
		return -1
	}
	i := sort.SearchFloat64s(axis, v) - 1
	return max(0, min(i, n-2))
}

// NearestAt returns the value of the grid node closest to (x, y).
func (g *Grid2D) NearestAt(x, y float64) (float64, error) {
	if err := g.validate(1); err != nil {
		return 0, fmt.Errorf("invalid grid: %w", err)
	}
	return g.nearest(x, y)
}

func (g *Grid2D) nearest(x, y float64) (float64, error) {
	if !g.Contains(x, y) {
		return 0, fmt.Errorf("point (%.6f, %.6f) is outside grid range", x, y)
	}
	return g.Values[nearestSorted(g.Y, y)][nearestSorted(g.X, x)], nil
}

// nearestSorted finds the index of the value closest to target in a sorted
// axis. Ties go to the lower index.
func nearestSorted(axis []float64, target float64) int {
	i := sort.SearchFloat64s(axis, target)
	if i >= len(axis) {
		return len(axis) - 1
	}
	if i > 0 && math.Abs(axis[i-1]-target) <= math.Abs(axis[i]-target) {
		return i - 1
	}
	return i
}

// NearestIndex returns the index of the element of axis closest to target.
// The axis need not be sorted. It returns -1 for an empty axis.
func NearestIndex(axis []float64, target float64) int {
	if len(axis) == 0 {
		return -1
	}
	diffs := make([]float64, len(axis))
	for i, v := range axis {
		d := math.Abs(v - target)
		if math.IsNaN(d) {
			d = math.Inf(1)
		}
		diffs[i] = d
	}
	return floats.MinIdx(diffs)
}

// Resample evaluates the grid at each (xs[k], ys[k]) pair. Points outside the
// grid extent yield NaN.
func (g *Grid2D) Resample(xs, ys []float64, method Method) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("got %d x and %d y coordinates", len(xs), len(ys))
	}
	minPoints := 1
	if method == Bilinear {
		minPoints = 2
	}
	if err := g.validate(minPoints); err != nil {
		return nil, fmt.Errorf("invalid grid for %s resampling: %w", method, err)
	}

	out := make([]float64, len(xs))
	for k := range xs {
		if !g.Contains(xs[k], ys[k]) {
			out[k] = math.NaN()
			continue
		}
		var (
			v   float64
			err error
		)
		switch method {
		case Nearest:
			v, err = g.nearest(xs[k], ys[k])
		case Bilinear:
			v, err = g.bilinear(xs[k], ys[k])
		default:
			return nil, fmt.Errorf("unsupported resampling method %s", method)
		}
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}
