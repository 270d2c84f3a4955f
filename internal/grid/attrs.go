package grid

import (
	"strings"

	"github.com/golang/glog"
	"go.ngs.io/pp-grid/internal/descriptor"
)

// AttrPrefix marks data attributes that carry grid descriptor entries.
const AttrPrefix = "ppgrid_"

// Attributes encodes the descriptor of g as prefixed attributes. Numbers
// become []float64, strings a single space-joined string.
func Attributes(g Grid) map[string]any {
	d := g.Descriptor()
	attrs := make(map[string]any, d.Len())
	for _, e := range d.Entries() {
		if e.Value.IsNumeric() {
			attrs[AttrPrefix+e.Key] = e.Value.Numbers
		} else {
			attrs[AttrPrefix+e.Key] = e.Value.String()
		}
	}
	return attrs
}

// FromAttributes rebuilds a grid from prefixed attributes. Unprefixed
// attributes are ignored. It returns nil, after logging, when no grid can be
// built.
func FromAttributes(attrs map[string]any) Grid {
	m := make(map[string]any)
	for k, v := range attrs {
		if key, ok := strings.CutPrefix(k, AttrPrefix); ok && key != "" {
			m[key] = v
		}
	}
	if len(m) == 0 {
		return nil
	}
	d, err := descriptor.FromMap(m)
	if err != nil {
		glog.Warningf("grid: ignoring attributes: %v", err)
		return nil
	}
	g, err := (&Builder{desc: d}).Build()
	if err != nil {
		glog.Warningf("grid: failed to rebuild grid from attributes: %v", err)
		return nil
	}
	return g
}
