package grid

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"go.ngs.io/pp-grid/internal/descriptor"
	"gonum.org/v1/gonum/floats"
)

const (
	epsilon = 1e-9
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// NormalizeLon maps a longitude in degrees into (-180, 180].
func NormalizeLon(lon float64) float64 {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return lon
	}
	lon = math.Mod(lon, 360)
	switch {
	case lon > 180:
		lon -= 360
	case lon <= -180:
		lon += 360
	}
	return lon
}

// angleFactor returns the factor converting values in the units stored under
// key to degrees.
func angleFactor(d *descriptor.Descriptor, key string) (float64, error) {
	u, ok := d.Text(key)
	if !ok {
		return 1, nil
	}
	switch strings.ToLower(u) {
	case "degrees", "degree", "deg", "degrees_east", "degrees_north", "degree_east", "degree_north":
		return 1, nil
	case "radians", "radian", "rad":
		return rad2deg, nil
	default:
		return 0, fmt.Errorf("%w: %s %q, expected degrees or radians", ErrInvalidValue, key, u)
	}
}

// NormalizeLatLon reorders 2-D latitude and longitude fields so latitude
// increases along axis 0 and longitude along axis 1. Longitudes above 180 are
// shifted by -360 first. data, if not nil, must end in the same two
// dimensions and is permuted the same way. The inputs are left untouched.
func NormalizeLatLon(lat, lon, data *Field) (*Field, *Field, *Field, error) {
	if lat == nil || lon == nil || len(lat.Shape) != 2 || !slices.Equal(lat.Shape, lon.Shape) {
		return nil, nil, nil, fmt.Errorf("%w: latitude and longitude must be 2-D fields of equal shape", ErrInvalidValue)
	}
	ny, nx := lat.Shape[0], lat.Shape[1]

	var (
		values  []float64
		nLead   int
		leading []int
	)
	if data != nil {
		var err error
		leading, nLead, _, err = data.splitSpatial(lat.Shape)
		if err != nil {
			return nil, nil, nil, err
		}
		values = data.Values
	}

	nlat, nlon, nvalues := normalizeLatLon(lat.Values, lon.Values, ny, nx, values, nLead)
	var out *Field
	if data != nil {
		out = mustField(nvalues, append(leading, ny, nx)...)
	}
	return mustField(nlat, ny, nx), mustField(nlon, ny, nx), out, nil
}

// normalizeLatLon sorts rows by the latitude of the centre column and columns
// by the longitude of the centre row. values holds nLead consecutive ny*nx
// slices, each permuted the same way.
func normalizeLatLon(lat, lon []float64, ny, nx int, values []float64, nLead int) ([]float64, []float64, []float64) {
	o := newAxisOrder(lat, lon, ny, nx)
	var nvalues []float64
	if values != nil {
		nvalues = o.permute(values[:nLead*ny*nx])
	}
	return o.permute(lat), o.permute(o.shifted), nvalues
}

// axisOrder is the row and column permutation that sorts the axes of a 2-D
// mesh.
type axisOrder struct {
	ny, nx     int
	rows, cols []int
	// rowKey and colKey are the sorted row and column coordinates.
	rowKey, colKey []float64
	shifted        []float64
}

func newAxisOrder(lat, lon []float64, ny, nx int) *axisOrder {
	shifted := make([]float64, len(lon))
	for i, v := range lon {
		if v > 180 {
			v -= 360
		}
		shifted[i] = v
	}

	rowKey := make([]float64, ny)
	for i := range rowKey {
		rowKey[i] = lat[i*nx+nx/2]
	}
	colKey := slices.Clone(shifted[(ny/2)*nx : (ny/2+1)*nx])
	rows := make([]int, ny)
	cols := make([]int, nx)
	floats.Argsort(rowKey, rows)
	floats.Argsort(colKey, cols)
	return &axisOrder{ny: ny, nx: nx, rows: rows, cols: cols, rowKey: rowKey, colKey: colKey, shifted: shifted}
}

// dropRepeats removes rows and columns whose key equals the previous one, such
// as the repeated wrap column of a global grid. The first occurrence is kept.
func (o *axisOrder) dropRepeats() {
	o.rows, o.rowKey = uniqueKeys(o.rows, o.rowKey)
	o.cols, o.colKey = uniqueKeys(o.cols, o.colKey)
}

func uniqueKeys(idx []int, key []float64) ([]int, []float64) {
	outIdx := idx[:0:0]
	outKey := key[:0:0]
	for i := range key {
		if i > 0 && math.Abs(key[i]-outKey[len(outKey)-1]) <= epsilon {
			continue
		}
		outIdx = append(outIdx, idx[i])
		outKey = append(outKey, key[i])
	}
	return outIdx, outKey
}

// permute reorders every ny*nx slice of src.
func (o *axisOrder) permute(src []float64) []float64 {
	size := o.ny * o.nx
	if size == 0 {
		return []float64{}
	}
	dst := make([]float64, 0, len(src)/size*len(o.rows)*len(o.cols))
	for off := 0; off < len(src); off += size {
		for _, i := range o.rows {
			for _, j := range o.cols {
				dst = append(dst, src[off+i*o.nx+j])
			}
		}
	}
	return dst
}

// Extent returns the bounds of g as (west, north, east, south) in degrees.
// NaN coordinates are ignored.
func Extent(g Grid) [4]float64 {
	lat, lon := g.LatLon()
	la := finite(lat.Values)
	lo := finite(lon.Values)
	if len(la) == 0 || len(lo) == 0 {
		nan := math.NaN()
		return [4]float64{nan, nan, nan, nan}
	}
	return [4]float64{floats.Min(lo), floats.Max(la), floats.Max(lo), floats.Min(la)}
}

func finite(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// lonLatBox is a parsed (west, north, east, south) box with normalised
// longitudes.
type lonLatBox struct {
	west, north, east, south float64
}

func parseBox(box []float64) (lonLatBox, error) {
	if len(box) != 4 {
		return lonLatBox{}, fmt.Errorf("%w: box needs 4 values (west, north, east, south), got %d", ErrInvalidValue, len(box))
	}
	for _, v := range box {
		if math.IsNaN(v) {
			return lonLatBox{}, fmt.Errorf("%w: box %v contains NaN", ErrInvalidValue, box)
		}
	}
	b := lonLatBox{west: box[0], north: box[1], east: box[2], south: box[3]}
	if b.north < b.south {
		return lonLatBox{}, fmt.Errorf("%w: box north %v is below south %v", ErrInvalidValue, b.north, b.south)
	}
	// A box spanning 360 degrees or more covers every longitude.
	if b.east-b.west >= 360 {
		b.west, b.east = -180, 180
		return b, nil
	}
	b.west, b.east = NormalizeLon(b.west), NormalizeLon(b.east)
	return b, nil
}

func (b lonLatBox) contains(lat, lon float64) bool {
	if lat < b.south-epsilon || lat > b.north+epsilon {
		return false
	}
	if b.west <= b.east {
		return lon >= b.west-epsilon && lon <= b.east+epsilon
	}
	// Box crosses the dateline.
	return lon >= b.west-epsilon || lon <= b.east+epsilon
}

// mask marks the points of c inside b and returns the number selected.
func (c *core) mask(b lonLatBox) ([]bool, int) {
	m := make([]bool, len(c.lat))
	n := 0
	for i := range m {
		if b.contains(c.lat[i], c.lon[i]) {
			m[i] = true
			n++
		}
	}
	return m, n
}

func emptyBoxError(b lonLatBox) error {
	return fmt.Errorf("%w: box (%v, %v, %v, %v) selects no grid points", ErrInvalidValue, b.west, b.north, b.east, b.south)
}
