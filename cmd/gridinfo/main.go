// Command gridinfo prints a summary of a grid read from a descriptor file or
// from the ppgrid_* attributes of a NetCDF variable. With -box it slices the
// grid (and the variable data) and prints the resulting descriptor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"go.ngs.io/pp-grid/internal/adapter/store/ncstore"
	"go.ngs.io/pp-grid/internal/descriptor"
	"go.ngs.io/pp-grid/internal/grid"
)

type options struct {
	gridPath string
	ncPath   string
	varName  string
	box      string
	outPath  string
}

func main() {
	var opts options
	flag.StringVar(&opts.gridPath, "grid", "", "Path to a grid descriptor file")
	flag.StringVar(&opts.ncPath, "nc", "", "Path to a NetCDF file whose variable carries ppgrid_* attributes")
	flag.StringVar(&opts.varName, "var", "", "NetCDF variable name (default: first variable)")
	flag.StringVar(&opts.box, "box", "", "Slice to west,north,east,south in degrees")
	flag.StringVar(&opts.outPath, "out", "", "Write the sliced variable to this NetCDF file (needs -nc and -box)")
	flag.Parse()
	defer glog.Flush()

	if (opts.gridPath == "") == (opts.ncPath == "") {
		fmt.Fprintln(os.Stderr, "Usage: gridinfo (-grid <descriptor> | -nc <file.nc> [-var name]) [-box w,n,e,s] [-out sliced.nc]")
		os.Exit(2)
	}

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "gridinfo: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, w io.Writer) error {
	if opts.outPath != "" && (opts.ncPath == "" || opts.box == "") {
		return errors.New("-out needs -nc and -box")
	}

	var (
		g    grid.Grid
		v    ncstore.Variable
		data *grid.Field
		err  error
	)
	if opts.gridPath != "" {
		d, err := descriptor.DecodeFile(opts.gridPath)
		if err != nil {
			return err
		}
		if g, err = grid.Build(d); err != nil {
			return err
		}
		data = grid.Zeros(g.Shape()...)
	} else {
		if g, v, err = loadVariable(opts.ncPath, opts.varName); err != nil {
			return err
		}
		data = v.Data
	}

	printSummary(w, g)
	if opts.box == "" {
		return nil
	}

	box, err := parseBox(opts.box)
	if err != nil {
		return err
	}
	sliced, sub, err := g.LonLatBox(data, box)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nSliced to %s:\n", opts.box)
	printSummary(w, sub)

	if opts.outPath != "" {
		v.Data = sliced
		v.Dims = nil
		if err := ncstore.Save(opts.outPath, v, sub); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nWrote %s (%s, shape %v)\n", opts.outPath, v.Name, sliced.Shape)
	}
	return nil
}

func loadVariable(path, name string) (grid.Grid, ncstore.Variable, error) {
	if name == "" {
		vars, err := ncstore.Variables(path)
		if err != nil {
			return nil, ncstore.Variable{}, err
		}
		if len(vars) == 0 {
			return nil, ncstore.Variable{}, fmt.Errorf("%s has no variables", path)
		}
		name = vars[0]
	}
	ds, err := ncstore.Load(path, name)
	if err != nil {
		return nil, ncstore.Variable{}, err
	}
	if ds.Grid == nil {
		return nil, ncstore.Variable{}, fmt.Errorf("variable %s in %s has no grid attributes", name, path)
	}
	return ds.Grid, ds.Variable, nil
}

func printSummary(w io.Writer, g grid.Grid) {
	ext := grid.Extent(g)
	fmt.Fprintf(w, "gridtype:    %s\n", g.Type())
	fmt.Fprintf(w, "shape:       %v\n", g.Shape())
	fmt.Fprintf(w, "coordinates: %s\n", strings.Join(g.CoordNames(), ", "))
	fmt.Fprintf(w, "extent:      west=%g north=%g east=%g south=%g\n", ext[0], ext[1], ext[2], ext[3])
	fmt.Fprintln(w, "descriptor:")
	fmt.Fprint(w, descriptor.Encode(g.Descriptor()))
}

func parseBox(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("box %q needs west,north,east,south", s)
	}
	box := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid box value %q: %w", p, err)
		}
		box[i] = v
	}
	return box, nil
}
