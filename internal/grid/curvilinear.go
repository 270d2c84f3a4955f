package grid

import (
	"fmt"

	"go.ngs.io/pp-grid/internal/descriptor"
)

// Curvilinear is a grid with precomputed 2-D latitude and longitude fields.
type Curvilinear struct {
	core
}

func newCurvilinear(d *descriptor.Descriptor) (Grid, error) {
	setDefault(d, "xname", "x")
	setDefault(d, "yname", "y")
	setDefault(d, "xunits", "degrees")
	setDefault(d, "yunits", "degrees")

	nx, okX, err := intKey(d, "xsize")
	if err != nil {
		return nil, err
	}
	ny, okY, err := intKey(d, "ysize")
	if err != nil {
		return nil, err
	}
	if !okX || !okY {
		return nil, fmt.Errorf("%w: %s grid needs xsize and ysize", ErrMissingKey, TypeCurvilinear)
	}
	lon, lat, err := pointValues(d, TypeCurvilinear, nx*ny)
	if err != nil {
		return nil, err
	}
	c, err := newCore(TypeCurvilinear, d, []int{ny, nx}, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("%s grid: %w", TypeCurvilinear, err)
	}
	return &Curvilinear{c}, nil
}

// pointValues reads xvals and yvals holding n values each and converts them to
// degrees.
func pointValues(d *descriptor.Descriptor, kind Type, n int) (lon, lat []float64, err error) {
	x, okX, err := valsKey(d, "xvals", n)
	if err != nil {
		return nil, nil, err
	}
	y, okY, err := valsKey(d, "yvals", n)
	if err != nil {
		return nil, nil, err
	}
	if !okX || !okY {
		return nil, nil, fmt.Errorf("%w: %s grid needs xvals and yvals", ErrMissingKey, kind)
	}
	fx, err := angleFactor(d, "xunits")
	if err != nil {
		return nil, nil, err
	}
	fy, err := angleFactor(d, "yunits")
	if err != nil {
		return nil, nil, err
	}
	return scale(x, fx), scale(y, fy), nil
}

// LonLatBox flattens the spatial dimensions and keeps the points inside the
// box. A box over a curvilinear mesh is not an index rectangle, so the result
// is always an Unstructured grid.
func (g *Curvilinear) LonLatBox(data *Field, box []float64) (*Field, Grid, error) {
	return boxPoints(&g.core, data, box)
}

// boxPoints filters the points of c and their data and returns them with an
// unstructured grid.
func boxPoints(c *core, data *Field, box []float64) (*Field, Grid, error) {
	b, err := parseBox(box)
	if err != nil {
		return nil, nil, err
	}
	leading, nLead, nSpatial, err := data.splitSpatial(c.shape)
	if err != nil {
		return nil, nil, err
	}
	m, n := c.mask(b)
	if n == 0 {
		return nil, nil, emptyBoxError(b)
	}

	lat := make([]float64, 0, n)
	lon := make([]float64, 0, n)
	for i, keep := range m {
		if keep {
			lat = append(lat, c.lat[i])
			lon = append(lon, c.lon[i])
		}
	}
	out := make([]float64, 0, nLead*n)
	for l := 0; l < nLead; l++ {
		off := l * nSpatial
		for i, keep := range m {
			if keep {
				out = append(out, data.Values[off+i])
			}
		}
	}

	d := descriptor.New()
	d.Set("gridtype", descriptor.Text(string(TypeUnstructured)))
	d.Set("gridsize", descriptor.Number(float64(n)))
	d.Set("xvals", descriptor.Number(lon...))
	d.Set("yvals", descriptor.Number(lat...))
	for _, key := range []string{"xname", "yname"} {
		if v, ok := c.desc.Get(key); ok {
			d.Set(key, v)
		}
	}
	d.Set("xunits", descriptor.Text("degrees"))
	d.Set("yunits", descriptor.Text("degrees"))

	g, err := newUnstructured(d)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build box grid: %w", err)
	}
	return mustField(out, append(leading, n)...), g, nil
}
