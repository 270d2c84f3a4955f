package grid

import (
	"fmt"

	"go.ngs.io/pp-grid/internal/descriptor"
)

// intKey reads a positive integer. A present but invalid value is an error.
func intKey(d *descriptor.Descriptor, key string) (int, bool, error) {
	if !d.Has(key) {
		return 0, false, nil
	}
	n, ok := d.Int(key)
	if !ok || n <= 0 {
		v, _ := d.Text(key)
		return 0, false, fmt.Errorf("%w: %s = %q, expected a positive integer", ErrInvalidValue, key, v)
	}
	return n, true, nil
}

// floatKey reads a scalar number. A present but invalid value is an error.
func floatKey(d *descriptor.Descriptor, key string) (float64, bool, error) {
	if !d.Has(key) {
		return 0, false, nil
	}
	f, ok := d.Float(key)
	if !ok {
		v, _ := d.Text(key)
		return 0, false, fmt.Errorf("%w: %s = %q, expected a number", ErrInvalidValue, key, v)
	}
	return f, true, nil
}

// valsKey reads a numeric list. want, if positive, is the required length.
func valsKey(d *descriptor.Descriptor, key string, want int) ([]float64, bool, error) {
	if !d.Has(key) {
		return nil, false, nil
	}
	vals, ok := d.Floats(key)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s must be a list of numbers", ErrInvalidValue, key)
	}
	if want > 0 && len(vals) != want {
		return nil, false, fmt.Errorf("%w: %s has %d values, expected %d", ErrInvalidValue, key, len(vals), want)
	}
	return vals, true, nil
}

// globalFallback fills in missing first/inc of an axis from its size.
type globalFallback func(axis string, size int, first float64, hasFirst bool) (float64, float64)

// globalCoverage spreads size points over the globe: longitudes from first
// (default 0) every 360/size degrees, latitudes centred in 180/size bands.
func globalCoverage(axis string, size int, first float64, hasFirst bool) (float64, float64) {
	if axis == "x" {
		inc := 360 / float64(size)
		if !hasFirst {
			first = 0
		}
		return first, inc
	}
	inc := 180 / float64(size)
	if !hasFirst {
		first = -90 + inc/2
	}
	return first, inc
}

// readAxis returns the values of axis "x" or "y" from {axis}vals, or else from
// {axis}first, {axis}size and {axis}inc. fallback, if not nil, completes an
// axis for which only the size is known.
func readAxis(d *descriptor.Descriptor, axis string, fallback globalFallback) ([]float64, error) {
	size, hasSize, err := intKey(d, axis+"size")
	if err != nil {
		return nil, err
	}
	want := 0
	if hasSize {
		want = size
	}
	vals, ok, err := valsKey(d, axis+"vals", want)
	if err != nil {
		return nil, err
	}
	if ok {
		return vals, nil
	}

	first, hasFirst, err := floatKey(d, axis+"first")
	if err != nil {
		return nil, err
	}
	inc, hasInc, err := floatKey(d, axis+"inc")
	if err != nil {
		return nil, err
	}
	if hasSize && !hasInc && fallback != nil {
		first, inc = fallback(axis, size, first, hasFirst)
		hasFirst, hasInc = true, true
	}
	if !hasSize || !hasFirst || !hasInc {
		return nil, fmt.Errorf("%w: %[2]s axis needs either %[2]svals or %[2]sfirst, %[2]ssize and %[2]sinc",
			ErrMissingKey, axis)
	}
	return steppedRange(first, inc, size), nil
}

// steppedRange returns size values first, first+inc, ... computed by
// multiplication so rounding does not accumulate.
func steppedRange(first, inc float64, size int) []float64 {
	out := make([]float64, size)
	for i := range out {
		out[i] = first + float64(i)*inc
	}
	return out
}

// meshAxes expands a latitude axis (rows) and a longitude axis (columns) into
// flat row-major fields.
func meshAxes(y, x []float64) (lat, lon []float64) {
	ny, nx := len(y), len(x)
	lat = make([]float64, ny*nx)
	lon = make([]float64, ny*nx)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			lat[i*nx+j] = y[i]
			lon[i*nx+j] = x[j]
		}
	}
	return lat, lon
}

func scale(vals []float64, f float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v * f
	}
	return out
}

func setDefault(d *descriptor.Descriptor, key, value string) {
	if !d.Has(key) {
		d.Set(key, descriptor.Text(value))
	}
}
