package interp

import (
	"math"
	"testing"
)

// TestBilinearInterpolate_CenterPoint tests interpolation at the center of a grid cell
func TestBilinearInterpolate_CenterPoint(t *testing.T) {
	cell := GridCell{
		X0: 0.0, X1: 2.0,
		Y0: 0.0, Y1: 2.0,
		V00: 1.0, V10: 3.0,
		V01: 5.0, V11: 7.0,
	}

	// t=0.5, u=0.5: 0.25 * (1 + 3 + 5 + 7) = 4.0
	result, err := BilinearInterpolate(cell, 1.0, 1.0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(result-4.0) > 1e-9 {
		t.Errorf("Center point: expected 4.0, got %.10f", result)
	}
}

// TestBilinearInterpolate_CornerIgnoresNaNNeighbour checks that a node value is
// returned exactly even when another corner is missing.
func TestBilinearInterpolate_CornerIgnoresNaNNeighbour(t *testing.T) {
	cell := GridCell{
		X0: 0.0, X1: 1.0,
		Y0: 0.0, Y1: 1.0,
		V00: 2.5, V10: math.NaN(),
		V01: math.NaN(), V11: math.NaN(),
	}

	result, err := BilinearInterpolate(cell, 0.0, 0.0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != 2.5 {
		t.Errorf("expected exact corner value 2.5, got %v", result)
	}
}

// TestBilinearInterpolate_OutOfBounds tests error handling for out-of-bounds points
func TestBilinearInterpolate_OutOfBounds(t *testing.T) {
	cell := GridCell{
		X0: 0.0, X1: 10.0,
		Y0: 0.0, Y1: 10.0,
		V00: 1.0, V10: 2.0,
		V01: 3.0, V11: 4.0,
	}

	tests := []struct {
		x, y float64
		name string
	}{
		{-1.0, 5.0, "x too small"},
		{11.0, 5.0, "x too large"},
		{5.0, -1.0, "y too small"},
		{5.0, 11.0, "y too large"},
	}

	for _, tt := range tests {
		if _, err := BilinearInterpolate(cell, tt.x, tt.y); err == nil {
			t.Errorf("%s: expected error for point (%.1f, %.1f), got nil", tt.name, tt.x, tt.y)
		}
	}
}

func testGrid(t *testing.T) *Grid2D {
	t.Helper()
	grid, err := NewGrid2D(
		[]float64{0.0, 1.0, 2.0},
		[]float64{0.0, 1.0, 2.0},
		[]float64{
			1.0, 2.0, 3.0, // y=0
			4.0, 5.0, 6.0, // y=1
			7.0, 8.0, 9.0, // y=2
		},
	)
	if err != nil {
		t.Fatalf("NewGrid2D: %v", err)
	}
	return grid
}

// TestGrid2D_InterpolateAt tests 2D grid interpolation
func TestGrid2D_InterpolateAt(t *testing.T) {
	grid := testGrid(t)

	tests := []struct {
		x, y     float64
		expected float64
	}{
		{0.0, 0.0, 1.0},
		{1.0, 0.0, 2.0},
		{2.0, 0.0, 3.0},
		{0.0, 1.0, 4.0},
		{1.0, 1.0, 5.0},
		{2.0, 2.0, 9.0},
		{0.5, 0.5, 3.0},
		{1.5, 2.0, 8.5},
	}

	for _, tt := range tests {
		result, err := grid.InterpolateAt(tt.x, tt.y)
		if err != nil {
			t.Fatalf("Unexpected error at (%.1f, %.1f): %v", tt.x, tt.y, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("At (%.1f, %.1f): expected %.10f, got %.10f", tt.x, tt.y, tt.expected, result)
		}
	}

	if _, err := grid.InterpolateAt(2.5, 1.0); err == nil {
		t.Errorf("expected error outside grid range")
	}
}

func TestGrid2D_NearestAt(t *testing.T) {
	grid := testGrid(t)

	tests := []struct {
		x, y     float64
		expected float64
	}{
		{0.0, 0.0, 1.0},
		{0.4, 0.4, 1.0},
		{0.6, 0.4, 2.0},
		{1.9, 1.6, 9.0},
		{0.5, 0.5, 1.0}, // ties go to the lower node
	}
	for _, tt := range tests {
		result, err := grid.NearestAt(tt.x, tt.y)
		if err != nil {
			t.Fatalf("Unexpected error at (%.1f, %.1f): %v", tt.x, tt.y, err)
		}
		if result != tt.expected {
			t.Errorf("At (%.1f, %.1f): expected %v, got %v", tt.x, tt.y, tt.expected, result)
		}
	}
}

func TestGrid2D_NearestAtSinglePoint(t *testing.T) {
	grid, err := NewGrid2D([]float64{5}, []float64{7}, []float64{42})
	if err != nil {
		t.Fatalf("NewGrid2D: %v", err)
	}
	got, err := grid.NearestAt(5, 7)
	if err != nil {
		t.Fatalf("NearestAt: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %v", got)
	}
	if _, err := grid.InterpolateAt(5, 7); err == nil {
		t.Errorf("bilinear interpolation on a single node should fail")
	}
}

func TestGrid2D_Resample(t *testing.T) {
	grid := testGrid(t)
	xs := []float64{0, 0.5, 2, 3}
	ys := []float64{0, 0.5, 2, 0}

	nearest, err := grid.Resample(xs, ys, Nearest)
	if err != nil {
		t.Fatalf("Resample nearest: %v", err)
	}
	bilinear, err := grid.Resample(xs, ys, Bilinear)
	if err != nil {
		t.Fatalf("Resample bilinear: %v", err)
	}

	wantNearest := []float64{1, 1, 9}
	wantBilinear := []float64{1, 3, 9}
	for k := 0; k < 3; k++ {
		if nearest[k] != wantNearest[k] {
			t.Errorf("nearest[%d]: expected %v, got %v", k, wantNearest[k], nearest[k])
		}
		if math.Abs(bilinear[k]-wantBilinear[k]) > 1e-9 {
			t.Errorf("bilinear[%d]: expected %v, got %v", k, wantBilinear[k], bilinear[k])
		}
	}
	if !math.IsNaN(nearest[3]) || !math.IsNaN(bilinear[3]) {
		t.Errorf("expected NaN outside the grid, got %v and %v", nearest[3], bilinear[3])
	}

	if _, err := grid.Resample([]float64{1}, nil, Nearest); err == nil {
		t.Errorf("expected error for mismatched coordinate lengths")
	}
}

func TestNearestIndex(t *testing.T) {
	tests := []struct {
		name   string
		axis   []float64
		target float64
		want   int
	}{
		{"sorted", []float64{0, 1, 2, 3}, 2.2, 2},
		{"descending", []float64{60, 50, 40}, 48, 1},
		{"wrapped longitudes", []float64{170, 179, -179, -170}, -178, 2},
		{"nan entries skipped", []float64{math.NaN(), 4, 9}, 0, 1},
		{"empty", nil, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NearestIndex(tt.axis, tt.target); got != tt.want {
				t.Errorf("NearestIndex() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestGrid2D_Validate tests grid validation
func TestGrid2D_Validate(t *testing.T) {
	tests := []struct {
		name    string
		grid    *Grid2D
		wantErr bool
	}{
		{
			name: "valid grid",
			grid: &Grid2D{
				X:      []float64{0.0, 1.0, 2.0},
				Y:      []float64{0.0, 1.0},
				Values: [][]float64{{1, 2, 3}, {4, 5, 6}},
			},
			wantErr: false,
		},
		{
			name: "too few X coords",
			grid: &Grid2D{
				X:      []float64{0.0},
				Y:      []float64{0.0, 1.0},
				Values: [][]float64{{1}, {2}},
			},
			wantErr: true,
		},
		{
			name: "mismatched row count",
			grid: &Grid2D{
				X:      []float64{0.0, 1.0},
				Y:      []float64{0.0, 1.0},
				Values: [][]float64{{1, 2}},
			},
			wantErr: true,
		},
		{
			name: "duplicate Y",
			grid: &Grid2D{
				X:      []float64{0.0, 1.0},
				Y:      []float64{1.0, 1.0},
				Values: [][]float64{{1, 2}, {3, 4}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
