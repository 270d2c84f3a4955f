package grid

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"

	"go.ngs.io/pp-grid/internal/adapter/interp"
	"go.ngs.io/pp-grid/internal/descriptor"
	"go.ngs.io/pp-grid/internal/projection"
)

// Projection is a rectilinear grid in the plane of a map projection. Its
// latitude and longitude fields are the inverse projection of the plane mesh.
type Projection struct {
	rectilinear
	proj projection.Projection
	// factor converts axis values to projection units.
	factor float64
}

const rotatedPole = "rotated_pole"

// firstText returns the text under the first present key.
func firstText(d *descriptor.Descriptor, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := d.Text(k); ok {
			return v, true
		}
	}
	return "", false
}

func newProjection(d *descriptor.Descriptor) (Grid, error) {
	p, factor, err := selectProjection(d)
	if err != nil {
		return nil, fmt.Errorf("%s grid: %w", TypeProjection, err)
	}

	x, err := readAxis(d, "x", nil)
	if err != nil {
		return nil, fmt.Errorf("%s grid: %w", TypeProjection, err)
	}
	y, err := readAxis(d, "y", nil)
	if err != nil {
		return nil, fmt.Errorf("%s grid: %w", TypeProjection, err)
	}

	ny, nx := len(y), len(x)
	lat := make([]float64, ny*nx)
	lon := make([]float64, ny*nx)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			lo, la, err := p.Inverse(x[j]*factor, y[i]*factor)
			if err != nil {
				return nil, fmt.Errorf("%w: %s grid point (%v, %v): %v", ErrInvalidValue, TypeProjection, x[j], y[i], err)
			}
			lat[i*nx+j] = la
			lon[i*nx+j] = lo
		}
	}

	c, err := newCore(TypeProjection, d, []int{ny, nx}, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("%s grid: %w", TypeProjection, err)
	}
	return &Projection{rectilinear: rectilinear{core: c, x: x, y: y}, proj: p, factor: factor}, nil
}

// selectProjection picks the projection described by d and the factor that
// converts plane axis values to the projection's units. Defaults for names
// and units are written back to d.
func selectProjection(d *descriptor.Descriptor) (projection.Projection, float64, error) {
	if def, ok := firstText(d, "proj4", "proj_params"); ok {
		setDefault(d, "xname", "x")
		setDefault(d, "yname", "y")
		setDefault(d, "xunits", "m")
		setDefault(d, "yunits", "m")
		fx, err := lengthFactor(d, "xunits")
		if err != nil {
			return nil, 0, err
		}
		fy, err := lengthFactor(d, "yunits")
		if err != nil {
			return nil, 0, err
		}
		if fx != fy {
			return nil, 0, fmt.Errorf("%w: xunits and yunits differ", ErrInvalidValue)
		}
		p, err := projection.NewProj4(def)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return p, fx, nil
	}

	mapping, _ := firstText(d, "grid_mapping", "grid_mapping_name")
	if mapping != rotatedPole {
		return nil, 0, fmt.Errorf("%w: projection needs proj4 or grid_mapping = %s, got grid_mapping %q",
			ErrInvalidValue, rotatedPole, mapping)
	}
	setDefault(d, "xname", "rlon")
	setDefault(d, "yname", "rlat")
	setDefault(d, "xunits", "degrees")
	setDefault(d, "yunits", "degrees")

	poleLat, ok, err := floatKey(d, "grid_north_pole_latitude")
	if err == nil && !ok {
		err = fmt.Errorf("%w: rotated_pole needs grid_north_pole_latitude", ErrMissingKey)
	}
	if err != nil {
		return nil, 0, err
	}
	poleLon, ok, err := floatKey(d, "grid_north_pole_longitude")
	if err == nil && !ok {
		err = fmt.Errorf("%w: rotated_pole needs grid_north_pole_longitude", ErrMissingKey)
	}
	if err != nil {
		return nil, 0, err
	}
	fx, err := angleFactor(d, "xunits")
	if err != nil {
		return nil, 0, err
	}
	fy, err := angleFactor(d, "yunits")
	if err != nil {
		return nil, 0, err
	}
	if fx != fy {
		return nil, 0, fmt.Errorf("%w: xunits and yunits differ", ErrInvalidValue)
	}
	p, err := projection.NewRotPole(poleLat, poleLon)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return p, fx, nil
}

// lengthFactor converts plane units to metres.
func lengthFactor(d *descriptor.Descriptor, key string) (float64, error) {
	u, _ := d.Text(key)
	switch strings.ToLower(u) {
	case "m", "meter", "meters", "metre", "metres":
		return 1, nil
	case "km", "kilometer", "kilometers", "kilometre", "kilometres":
		return 1000, nil
	default:
		return 0, fmt.Errorf("%w: %s %q, expected m or km", ErrInvalidValue, key, u)
	}
}

// Projection returns the map projection of the grid.
func (g *Projection) Projection() projection.Projection {
	return g.proj
}

// PlaneAxes returns copies of the projected x and y axes in descriptor units.
func (g *Projection) PlaneAxes() (x, y []float64) {
	return append([]float64(nil), g.x...), append([]float64(nil), g.y...)
}

// Interpolate resamples in the projection plane: target points are projected
// onto the x and y axes, so grid nodes map back onto themselves.
func (g *Projection) Interpolate(data *Field, target Grid, order Order) (*Field, error) {
	method, err := g.checkInterpolate(data, target, order)
	if err != nil {
		return nil, err
	}
	tlat, tlon := target.LatLon()
	px, py := g.toPlane(tlat.Values, tlon.Values)

	xs, ys := slices.Clone(g.x), slices.Clone(g.y)
	o := &axisOrder{ny: len(ys), nx: len(xs), rows: make([]int, len(ys)), cols: make([]int, len(xs)), rowKey: ys, colKey: xs}
	floats.Argsort(o.rowKey, o.rows)
	floats.Argsort(o.colKey, o.cols)
	o.dropRepeats()

	return resampleSlices(data, g.shape, target, func(slice []float64) ([]float64, error) {
		g2, err := interp.NewGrid2D(o.colKey, o.rowKey, o.permute(slice))
		if err != nil {
			return nil, err
		}
		return g2.Resample(px, py, method)
	})
}

// toPlane projects lon/lat points to axis units. Points the projection cannot
// map become NaN. Rotated longitudes are wrapped into the x axis range.
func (g *Projection) toPlane(lat, lon []float64) (px, py []float64) {
	_, rotated := g.proj.(*projection.RotPole)
	turn := 360 / g.factor
	xmin, xmax := floats.Min(g.x), floats.Max(g.x)
	ymin, ymax := floats.Min(g.y), floats.Max(g.y)

	px = make([]float64, len(lat))
	py = make([]float64, len(lat))
	for k := range lat {
		x, y, err := g.proj.Forward(lon[k], lat[k])
		if err != nil {
			px[k], py[k] = math.NaN(), math.NaN()
			continue
		}
		x /= g.factor
		y /= g.factor
		if rotated {
			switch {
			case x < xmin-epsilon && x+turn <= xmax+epsilon:
				x += turn
			case x > xmax+epsilon && x-turn >= xmin-epsilon:
				x -= turn
			}
		}
		px[k], py[k] = snapToRange(x, xmin, xmax), snapToRange(y, ymin, ymax)
	}
	return px, py
}

// snapToRange moves v onto the nearer end of [lo, hi] when it misses it by
// no more than a millionth of the range, the size of projection round-trip
// error.
func snapToRange(v, lo, hi float64) float64 {
	tol := 1e-6 * math.Max(hi-lo, 1)
	switch {
	case v < lo && v >= lo-tol:
		return lo
	case v > hi && v <= hi+tol:
		return hi
	}
	return v
}
