package grid

import (
	"fmt"

	"go.ngs.io/pp-grid/internal/descriptor"
)

// rectilinear is shared by grids whose points are the outer product of a y
// and an x axis. x and y keep the axis values in descriptor units.
type rectilinear struct {
	core
	x, y []float64
}

// LonLatBox keeps every row and column that holds at least one point inside
// the box. The returned grid has the same type and lists its axes explicitly.
func (r *rectilinear) LonLatBox(data *Field, box []float64) (*Field, Grid, error) {
	b, err := parseBox(box)
	if err != nil {
		return nil, nil, err
	}
	leading, nLead, nSpatial, err := data.splitSpatial(r.shape)
	if err != nil {
		return nil, nil, err
	}

	ny, nx := r.shape[0], r.shape[1]
	m, n := r.mask(b)
	if n == 0 {
		return nil, nil, emptyBoxError(b)
	}
	keepRow := make([]bool, ny)
	keepCol := make([]bool, nx)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			if m[i*nx+j] {
				keepRow[i] = true
				keepCol[j] = true
			}
		}
	}
	rows := indices(keepRow)
	cols := indices(keepCol)

	out := make([]float64, 0, nLead*len(rows)*len(cols))
	for l := 0; l < nLead; l++ {
		off := l * nSpatial
		for _, i := range rows {
			for _, j := range cols {
				out = append(out, data.Values[off+i*nx+j])
			}
		}
	}

	d := r.desc.Clone()
	for _, axis := range []string{"x", "y"} {
		d.Delete(axis + "first")
		d.Delete(axis + "inc")
	}
	d.Set("xsize", descriptor.Number(float64(len(cols))))
	d.Set("ysize", descriptor.Number(float64(len(rows))))
	d.Set("xvals", descriptor.Number(pick(r.x, cols)...))
	d.Set("yvals", descriptor.Number(pick(r.y, rows)...))

	g, err := construct(r.kind, d)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build box grid: %w", err)
	}
	return mustField(out, append(leading, len(rows), len(cols))...), g, nil
}

func indices(keep []bool) []int {
	var out []int
	for i, k := range keep {
		if k {
			out = append(out, i)
		}
	}
	return out
}

func pick(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = vals[i]
	}
	return out
}

// LonLat is a regular longitude/latitude grid.
type LonLat struct {
	rectilinear
}

// Gaussian is a rectilinear grid with irregularly spaced latitudes. Axes must
// be given explicitly or by first, size and inc.
type Gaussian struct {
	rectilinear
}

func newLonLat(d *descriptor.Descriptor) (Grid, error) {
	r, err := geographicAxes(TypeLonLat, d, globalCoverage)
	if err != nil {
		return nil, err
	}
	return &LonLat{r}, nil
}

func newGaussian(d *descriptor.Descriptor) (Grid, error) {
	r, err := geographicAxes(TypeGaussian, d, nil)
	if err != nil {
		return nil, err
	}
	return &Gaussian{r}, nil
}

func geographicAxes(kind Type, d *descriptor.Descriptor, fallback globalFallback) (rectilinear, error) {
	setDefault(d, "xname", "lon")
	setDefault(d, "yname", "lat")
	setDefault(d, "xunits", "degrees")
	setDefault(d, "yunits", "degrees")

	x, err := readAxis(d, "x", fallback)
	if err != nil {
		return rectilinear{}, fmt.Errorf("%s grid: %w", kind, err)
	}
	y, err := readAxis(d, "y", fallback)
	if err != nil {
		return rectilinear{}, fmt.Errorf("%s grid: %w", kind, err)
	}
	fx, err := angleFactor(d, "xunits")
	if err != nil {
		return rectilinear{}, err
	}
	fy, err := angleFactor(d, "yunits")
	if err != nil {
		return rectilinear{}, err
	}

	lat, lon := meshAxes(scale(y, fy), scale(x, fx))
	c, err := newCore(kind, d, []int{len(y), len(x)}, lat, lon)
	if err != nil {
		return rectilinear{}, fmt.Errorf("%s grid: %w", kind, err)
	}
	return rectilinear{core: c, x: x, y: y}, nil
}

// Axes returns copies of the longitude and latitude axes in degrees.
func (g *LonLat) Axes() (lon, lat []float64) {
	return rowOf(g.lon, g.shape, 0), columnOf(g.lat, g.shape, 0)
}

// Axes returns copies of the longitude and latitude axes in degrees.
func (g *Gaussian) Axes() (lon, lat []float64) {
	return rowOf(g.lon, g.shape, 0), columnOf(g.lat, g.shape, 0)
}

func rowOf(vals []float64, shape []int, i int) []float64 {
	nx := shape[1]
	return append([]float64(nil), vals[i*nx:(i+1)*nx]...)
}

func columnOf(vals []float64, shape []int, j int) []float64 {
	ny, nx := shape[0], shape[1]
	out := make([]float64, ny)
	for i := range out {
		out[i] = vals[i*nx+j]
	}
	return out
}
