// Package grid builds geographic grids from descriptors and provides the
// coordinate operations used on gridded data: nearest-point extraction,
// regridding and longitude/latitude box slicing.
//
// All grids compute their coordinate fields once, at construction, and are
// immutable afterwards, so a Grid may be shared between goroutines.
package grid

import (
	"fmt"
	"math"
	"slices"

	"go.ngs.io/pp-grid/internal/adapter/interp"
	"go.ngs.io/pp-grid/internal/descriptor"
	"gonum.org/v1/gonum/floats"
)

// Type is the value of the gridtype descriptor key.
type Type string

const (
	TypeLonLat       Type = "lonlat"
	TypeGaussian     Type = "gaussian"
	TypeProjection   Type = "projection"
	TypeCurvilinear  Type = "curvilinear"
	TypeUnstructured Type = "unstructured"
)

// SupportedTypes lists every gridtype the builder accepts.
var SupportedTypes = []Type{TypeLonLat, TypeGaussian, TypeProjection, TypeCurvilinear, TypeUnstructured}

// Order selects the regridding method.
type Order int

const (
	// OrderNearest copies the value of the nearest source point.
	OrderNearest Order = 0
	// OrderBilinear interpolates linearly between the four surrounding points.
	OrderBilinear Order = 1
)

func (o Order) method() (interp.Method, error) {
	switch o {
	case OrderNearest:
		return interp.Nearest, nil
	case OrderBilinear:
		return interp.Bilinear, nil
	default:
		return 0, fmt.Errorf("%w: interpolation order %d, expected 0 (nearest) or 1 (bilinear)", ErrInvalidValue, int(o))
	}
}

// unstructuredDim names the single coordinate dimension of unstructured grids.
const unstructuredDim = "ncells"

// Grid is a built geographic grid.
type Grid interface {
	// Type returns the gridtype tag.
	Type() Type
	// Descriptor returns a copy of the descriptor, including filled-in defaults.
	Descriptor() *descriptor.Descriptor
	// LenCoords is the number of spatial dimensions: 1 for unstructured grids,
	// 2 otherwise.
	LenCoords() int
	// CoordNames names the spatial dimensions, slowest varying first.
	CoordNames() []string
	// Shape is the spatial shape.
	Shape() []int
	// LatLon returns copies of the latitude and longitude fields in degrees.
	LatLon() (lat, lon *Field)

	// NearestPoint returns the data at the grid point nearest to (lat, lon).
	// Leading non-spatial dimensions are kept.
	NearestPoint(data *Field, lat, lon float64) (*Field, error)
	// Interpolate resamples data from this grid onto target.
	Interpolate(data *Field, target Grid, order Order) (*Field, error)
	// LonLatBox cuts data to the box (west, north, east, south) and returns
	// the grid of the selection.
	LonLatBox(data *Field, box []float64) (*Field, Grid, error)
}

// core holds what every variant shares. lat and lon are flat, row-major and
// match shape.
type core struct {
	kind  Type
	desc  *descriptor.Descriptor
	shape []int
	lat   []float64
	lon   []float64
}

func newCore(kind Type, d *descriptor.Descriptor, shape []int, lat, lon []float64) (core, error) {
	for i, v := range lat {
		if math.IsNaN(v) || v < -90-epsilon || v > 90+epsilon {
			return core{}, fmt.Errorf("%w: latitude %v at point %d outside [-90, 90]", ErrInvalidValue, v, i)
		}
		lat[i] = math.Max(-90, math.Min(90, v))
	}
	for i, v := range lon {
		lon[i] = NormalizeLon(v)
	}
	return core{kind: kind, desc: d, shape: shape, lat: lat, lon: lon}, nil
}

func (c *core) Type() Type {
	return c.kind
}

func (c *core) Descriptor() *descriptor.Descriptor {
	return c.desc.Clone()
}

func (c *core) LenCoords() int {
	return len(c.shape)
}

func (c *core) Shape() []int {
	return slices.Clone(c.shape)
}

func (c *core) CoordNames() []string {
	if len(c.shape) == 1 {
		return []string{unstructuredDim}
	}
	y, _ := c.desc.Text("yname")
	x, _ := c.desc.Text("xname")
	return []string{y, x}
}

func (c *core) LatLon() (*Field, *Field) {
	return mustField(slices.Clone(c.lat), c.shape...), mustField(slices.Clone(c.lon), c.shape...)
}

func (c *core) NearestPoint(data *Field, lat, lon float64) (*Field, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return nil, fmt.Errorf("%w: query point (%v, %v)", ErrInvalidValue, lat, lon)
	}
	leading, nLead, nSpatial, err := data.splitSpatial(c.shape)
	if err != nil {
		return nil, err
	}

	var idx int
	if len(c.shape) == 1 {
		idx = nearestGreatCircle(c.lat, c.lon, lat, lon)
	} else {
		ny, nx := c.shape[0], c.shape[1]
		latCol := make([]float64, ny)
		for i := range latCol {
			latCol[i] = c.lat[i*nx+nx/2]
		}
		// Longitude offsets wrapped to [-180, 180] so the search is
		// insensitive to the dateline.
		lonRow := make([]float64, nx)
		for j := range lonRow {
			lonRow[j] = math.Remainder(c.lon[(ny/2)*nx+j]-lon, 360)
		}
		idx = interp.NearestIndex(latCol, lat)*nx + interp.NearestIndex(lonRow, 0)
	}

	out := make([]float64, nLead)
	for l := range out {
		out[l] = data.Values[l*nSpatial+idx]
	}
	return mustField(out, leading...), nil
}

func nearestGreatCircle(lats, lons []float64, lat, lon float64) int {
	dist := make([]float64, len(lats))
	for i := range lats {
		d := haversine(lats[i], lons[i], lat, lon)
		if math.IsNaN(d) {
			d = math.Inf(1)
		}
		dist[i] = d
	}
	return floats.MinIdx(dist)
}

// haversine returns the central angle between two points in radians.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	p1, p2 := lat1*deg2rad, lat2*deg2rad
	dp := p2 - p1
	dl := (lon2 - lon1) * deg2rad
	a := math.Pow(math.Sin(dp/2), 2) + math.Cos(p1)*math.Cos(p2)*math.Pow(math.Sin(dl/2), 2)
	return 2 * math.Asin(math.Sqrt(math.Min(1, a)))
}

// resampler evaluates one spatial slice of source data, in native order, at
// the target points.
type resampler func(slice []float64) ([]float64, error)

func (c *core) Interpolate(data *Field, target Grid, order Order) (*Field, error) {
	method, err := c.checkInterpolate(data, target, order)
	if err != nil {
		return nil, err
	}
	tlat, tlon := target.LatLon()
	var resample resampler
	if c.kind == TypeCurvilinear {
		resample = c.meshResampler(tlat.Values, tlon.Values, method)
	} else {
		resample = c.axisResampler(tlat.Values, tlon.Values, method)
	}
	return resampleSlices(data, c.shape, target, resample)
}

func (c *core) checkInterpolate(data *Field, target Grid, order Order) (interp.Method, error) {
	if target == nil {
		return 0, fmt.Errorf("%w: nil target grid", ErrInvalidValue)
	}
	method, err := order.method()
	if err != nil {
		return 0, err
	}
	if len(c.shape) != 2 {
		return 0, fmt.Errorf("%w: cannot interpolate from a %s grid", ErrInvalidValue, c.kind)
	}
	if _, _, _, err := data.splitSpatial(c.shape); err != nil {
		return 0, err
	}
	return method, nil
}

func resampleSlices(data *Field, shape []int, target Grid, resample resampler) (*Field, error) {
	leading, nLead, nSpatial, err := data.splitSpatial(shape)
	if err != nil {
		return nil, err
	}
	nTarget, err := shapeSize(append(target.Shape(), nLead))
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, nTarget)
	for l := 0; l < nLead; l++ {
		res, err := resample(data.Values[l*nSpatial : (l+1)*nSpatial])
		if err != nil {
			return nil, fmt.Errorf("%w: failed to resample onto %s grid: %v", ErrInvalidValue, target.Type(), err)
		}
		out = append(out, res...)
	}
	return mustField(out, append(leading, target.Shape()...)...), nil
}

// axisResampler normalises the source mesh and resamples along the latitudes
// of its centre column and the longitudes of its centre row, which is exact
// for lon/lat grids. Repeated rows and columns are dropped.
func (c *core) axisResampler(tlat, tlon []float64, method interp.Method) resampler {
	ny, nx := c.shape[0], c.shape[1]
	o := newAxisOrder(c.lat, c.lon, ny, nx)
	o.dropRepeats()
	return func(slice []float64) ([]float64, error) {
		g2, err := interp.NewGrid2D(o.colKey, o.rowKey, o.permute(slice))
		if err != nil {
			return nil, err
		}
		return g2.Resample(tlon, tlat, method)
	}
}

// meshResampler resamples a curvilinear mesh. Nearest neighbour searches
// every node; bilinear returns the node value at coincident points and falls
// back to the centre row and column axes elsewhere.
func (c *core) meshResampler(tlat, tlon []float64, method interp.Method) resampler {
	m := newMesh(c.lat, c.lon, c.shape[0], c.shape[1])
	idx := make([]int, len(tlat))
	exact := make([]bool, len(tlat))
	for k := range tlat {
		i, d, inside := m.nearest(tlat[k], tlon[k])
		if !inside {
			i = -1
		}
		idx[k] = i
		exact[k] = inside && d <= coincident
	}

	var axes resampler
	if method == interp.Bilinear {
		axes = c.axisResampler(tlat, tlon, method)
	}
	return func(slice []float64) ([]float64, error) {
		var approx []float64
		if axes != nil {
			var err error
			if approx, err = axes(slice); err != nil {
				return nil, err
			}
		}
		out := make([]float64, len(idx))
		for k, i := range idx {
			switch {
			case i < 0:
				out[k] = math.NaN()
			case approx == nil || exact[k]:
				out[k] = slice[i]
			default:
				out[k] = approx[k]
			}
		}
		return out, nil
	}
}
