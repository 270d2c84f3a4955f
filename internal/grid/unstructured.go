package grid

import (
	"fmt"

	"go.ngs.io/pp-grid/internal/descriptor"
)

// Unstructured is a flat list of points with one coordinate dimension.
type Unstructured struct {
	core
}

func newUnstructured(d *descriptor.Descriptor) (Grid, error) {
	setDefault(d, "xname", "lon")
	setDefault(d, "yname", "lat")
	setDefault(d, "xunits", "degrees")
	setDefault(d, "yunits", "degrees")

	n, ok, err := intKey(d, "gridsize")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s grid needs gridsize", ErrMissingKey, TypeUnstructured)
	}
	lon, lat, err := pointValues(d, TypeUnstructured, n)
	if err != nil {
		return nil, err
	}
	c, err := newCore(TypeUnstructured, d, []int{n}, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("%s grid: %w", TypeUnstructured, err)
	}
	return &Unstructured{c}, nil
}

// LonLatBox keeps the points inside the box.
func (g *Unstructured) LonLatBox(data *Field, box []float64) (*Field, Grid, error) {
	return boxPoints(&g.core, data, box)
}
