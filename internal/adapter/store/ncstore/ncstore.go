// Package ncstore persists gridded fields to NetCDF files. The grid of a field
// travels with it as ppgrid_* variable attributes.
package ncstore

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	cdf "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/fhs/go-netcdf/netcdf"
	"github.com/golang/glog"

	"go.ngs.io/pp-grid/internal/grid"
)

// Variable is a named data field.
type Variable struct {
	Name string
	// Dims names every dimension of Data. When empty, leading dimensions are
	// named dim0, dim1, ... and spatial ones after the grid's coordinates.
	Dims []string
	Data *grid.Field
	// Attrs holds extra attributes; values are string, float64 or []float64.
	Attrs map[string]any
}

// Dataset is a variable read back from a file with its reconstructed grid.
type Dataset struct {
	Variable Variable
	// Grid is nil when the file carries no usable grid attributes.
	Grid grid.Grid
}

// Save writes v to a new NetCDF file at path, replacing any existing file.
// When g is not nil its descriptor is stored in the variable attributes.
func Save(path string, v Variable, g grid.Grid) error {
	if v.Data == nil {
		return fmt.Errorf("variable %s has no data", v.Name)
	}
	dimNames, err := dimensionNames(v, g)
	if err != nil {
		return err
	}

	attrs := make(map[string]any, len(v.Attrs))
	for k, val := range v.Attrs {
		attrs[k] = val
	}
	if g != nil {
		for k, val := range grid.Attributes(g) {
			attrs[k] = val
		}
	}

	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	dims := make([]netcdf.Dim, len(dimNames))
	for i, name := range dimNames {
		dims[i], err = f.AddDim(name, uint64(v.Data.Shape[i]))
		if err != nil {
			return fmt.Errorf("failed to add dimension %s: %w", name, err)
		}
	}
	nv, err := f.AddVar(v.Name, netcdf.DOUBLE, dims)
	if err != nil {
		return fmt.Errorf("failed to add variable %s: %w", v.Name, err)
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := writeAttr(nv.Attr(k), attrs[k]); err != nil {
			return fmt.Errorf("failed to write attribute %s: %w", k, err)
		}
	}

	if err := f.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}
	if err := nv.WriteFloat64s(v.Data.Values); err != nil {
		return fmt.Errorf("failed to write %s: %w", v.Name, err)
	}
	return nil
}

func dimensionNames(v Variable, g grid.Grid) ([]string, error) {
	shape := v.Data.Shape
	if len(v.Dims) > 0 {
		if len(v.Dims) != len(shape) {
			return nil, fmt.Errorf("variable %s has %d dimension names for shape %v", v.Name, len(v.Dims), shape)
		}
		return slices.Clone(v.Dims), nil
	}

	var spatial []string
	if g != nil {
		spatial = g.CoordNames()
		if !slices.Equal(shape[max(0, len(shape)-len(spatial)):], g.Shape()) {
			return nil, fmt.Errorf("variable %s shape %v does not end in grid shape %v", v.Name, shape, g.Shape())
		}
	}
	names := make([]string, 0, len(shape))
	for i := 0; i < len(shape)-len(spatial); i++ {
		names = append(names, fmt.Sprintf("dim%d", i))
	}
	return append(names, spatial...), nil
}

func writeAttr(a netcdf.Attr, val any) error {
	switch v := val.(type) {
	case string:
		return a.WriteBytes([]byte(v))
	case float64:
		return a.WriteFloat64s([]float64{v})
	case []float64:
		return a.WriteFloat64s(v)
	case int:
		return a.WriteFloat64s([]float64{float64(v)})
	default:
		return fmt.Errorf("unsupported attribute type %T", val)
	}
}

// Load reads the variable name from the NetCDF file at path. A missing or
// broken grid description leaves Dataset.Grid nil without failing the load.
func Load(path, name string) (*Dataset, error) {
	nc, err := cdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer nc.Close()

	v, err := nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read variable %s: %w", name, err)
	}
	values, shape, err := flatten(v.Values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode variable %s: %w", name, err)
	}
	data, err := grid.NewField(values, shape...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode variable %s: %w", name, err)
	}

	all := make(map[string]any)
	extra := make(map[string]any)
	if v.Attributes != nil {
		for _, k := range v.Attributes.Keys() {
			val, ok := v.Attributes.Get(k)
			if !ok {
				continue
			}
			all[k] = val
			if !strings.HasPrefix(k, grid.AttrPrefix) {
				extra[k] = val
			}
		}
	}

	g := grid.FromAttributes(all)
	if g == nil {
		glog.Infof("ncstore: %s:%s has no grid attached", path, name)
	}
	return &Dataset{
		Variable: Variable{Name: name, Dims: v.Dimensions, Data: data, Attrs: extra},
		Grid:     g,
	}, nil
}

// Variables lists the variables of the NetCDF file at path.
func Variables(path string) ([]string, error) {
	nc, err := cdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer nc.Close()
	return nc.ListVariables(), nil
}

// flatten converts the nested slices returned by the reader into a flat
// row-major slice and its shape.
func flatten(values any) ([]float64, []int, error) {
	rv := reflect.ValueOf(values)
	if !rv.IsValid() {
		return nil, nil, fmt.Errorf("no values")
	}
	if rv.Kind() != reflect.Slice {
		f, err := toFloat(rv)
		if err != nil {
			return nil, nil, err
		}
		return []float64{f}, nil, nil
	}

	var shape []int
	for cur := rv; cur.Kind() == reflect.Slice; {
		shape = append(shape, cur.Len())
		if cur.Len() == 0 {
			break
		}
		cur = cur.Index(0)
	}

	out := make([]float64, 0, product(shape))
	var walk func(v reflect.Value, depth int) error
	walk = func(v reflect.Value, depth int) error {
		if depth == len(shape) {
			f, err := toFloat(v)
			if err != nil {
				return err
			}
			out = append(out, f)
			return nil
		}
		if v.Kind() != reflect.Slice || v.Len() != shape[depth] {
			return fmt.Errorf("ragged values at depth %d", depth)
		}
		for i := 0; i < v.Len(); i++ {
			if err := walk(v.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(rv, 0); err != nil {
		return nil, nil, err
	}
	return out, shape, nil
}

func toFloat(v reflect.Value) (float64, error) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	default:
		return 0, fmt.Errorf("non-numeric value of type %s", v.Type())
	}
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
