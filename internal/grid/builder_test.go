package grid

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const europeDescriptor = `# 0.5 x 1 degree box over central Europe
gridtype = lonlat
xfirst   = 10
xsize    = 4
xinc     = 0.5
yfirst   = 50
ysize    = 3
yinc     = 1.0
`

func mustBuild(t *testing.T, src any) Grid {
	t.Helper()
	g, err := Build(src)
	require.NoError(t, err)
	return g
}

func TestBuild_LonLatAxes(t *testing.T) {
	g := mustBuild(t, europeDescriptor)

	require.IsType(t, &LonLat{}, g)
	assert.Equal(t, TypeLonLat, g.Type())
	assert.Equal(t, 2, g.LenCoords())
	assert.Equal(t, []int{3, 4}, g.Shape())
	assert.Equal(t, []string{"lat", "lon"}, g.CoordNames())

	lon, lat := g.(*LonLat).Axes()
	assert.Equal(t, []float64{10, 10.5, 11, 11.5}, lon)
	assert.Equal(t, []float64{50, 51, 52}, lat)

	latF, lonF := g.LatLon()
	assert.Equal(t, []int{3, 4}, latF.Shape)
	assert.Equal(t, []int{3, 4}, lonF.Shape)
	assert.Equal(t, 51.0, latF.At(1, 3))
	assert.Equal(t, 11.5, lonF.At(1, 3))
}

func TestBuild_Sources(t *testing.T) {
	want := mustBuild(t, europeDescriptor)
	wantLat, wantLon := want.LatLon()

	path := filepath.Join(t.TempDir(), "europe.txt")
	require.NoError(t, os.WriteFile(path, []byte(europeDescriptor), 0o600))

	sources := map[string]any{
		"path":  path,
		"lines": strings.Split(europeDescriptor, "\n"),
		"map": map[string]any{
			"gridtype": "lonlat",
			"xvals":    []any{10.0, 10.5, 11.0, 11.5},
			"yfirst":   50,
			"ysize":    3,
			"yinc":     1.0,
		},
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			g := mustBuild(t, src)
			lat, lon := g.LatLon()
			assert.Equal(t, wantLat, lat)
			assert.Equal(t, wantLon, lon)
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		wantErr error
		msg     string
	}{
		{name: "unsupported input", src: 42, wantErr: ErrInvalidType},
		{name: "unsupported map value", src: map[string]any{"gridtype": struct{}{}}, wantErr: ErrInvalidValue},
		{name: "missing gridtype", src: "xsize = 4\nysize = 2\n", wantErr: ErrMissingKey, msg: "gridtype"},
		{name: "unknown gridtype", src: "gridtype = hexagonal\n", wantErr: ErrInvalidValue,
			msg: "lonlat, gaussian, projection, curvilinear, unstructured"},
		{name: "missing axis", src: "gridtype = lonlat\nxvals = 1 2\n", wantErr: ErrMissingKey, msg: "yvals or yfirst"},
		{name: "gaussian without values", src: "gridtype = gaussian\nxsize = 4\nysize = 2\n", wantErr: ErrMissingKey},
		{name: "size mismatch", src: "gridtype = lonlat\nxvals = 1 2\nxsize = 3\nyvals = 0\n", wantErr: ErrInvalidValue},
		{name: "fractional size", src: "gridtype = lonlat\nxsize = 2.5\nyvals = 0\n", wantErr: ErrInvalidValue},
		{name: "bad units", src: "gridtype = lonlat\nxvals = 1 2\nyvals = 0\nxunits = furlongs\n", wantErr: ErrInvalidValue},
		{name: "latitude out of range", src: "gridtype = lonlat\nxvals = 1 2\nyvals = 0 95\n", wantErr: ErrInvalidValue},
		{name: "curvilinear without sizes", src: "gridtype = curvilinear\nxvals = 1 2\nyvals = 0 1\n", wantErr: ErrMissingKey},
		{name: "curvilinear short values", src: "gridtype = curvilinear\nxsize = 2\nysize = 2\nxvals = 1 2\nyvals = 0 1\n",
			wantErr: ErrInvalidValue},
		{name: "unstructured without gridsize", src: "gridtype = unstructured\nxvals = 1 2\nyvals = 0 1\n", wantErr: ErrMissingKey},
		{name: "projection without mapping", src: "gridtype = projection\nxvals = 0 1\nyvals = 0 1\n", wantErr: ErrInvalidValue},
		{name: "rotated pole without latitude",
			src:     "gridtype = projection\ngrid_mapping = rotated_pole\ngrid_north_pole_longitude = 10\nxvals = 0\nyvals = 0\n",
			wantErr: ErrMissingKey},
		{name: "rotated pole beyond the pole",
			src:     "gridtype = projection\ngrid_mapping = rotated_pole\ngrid_north_pole_latitude = 95\ngrid_north_pole_longitude = 10\nxvals = 0\nyvals = 0\n",
			wantErr: ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.src)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestBuild_GlobalFallback(t *testing.T) {
	g := mustBuild(t, "gridtype = lonlat\nxsize = 4\nysize = 2\n")
	lon, lat := g.(*LonLat).Axes()
	assert.Equal(t, []float64{0, 90, 180, -90}, lon)
	assert.Equal(t, []float64{-45, 45}, lat)
}

func TestBuild_Gaussian(t *testing.T) {
	g := mustBuild(t, "gridtype = gaussian\nxfirst = 0\nxinc = 120\nxsize = 3\nyvals = -41.775 0 41.775\n")
	require.IsType(t, &Gaussian{}, g)
	lon, lat := g.(*Gaussian).Axes()
	assert.Equal(t, []float64{0, 120, -120}, lon)
	assert.Equal(t, []float64{-41.775, 0, 41.775}, lat)
}

func TestBuild_RadiansAreConverted(t *testing.T) {
	g := mustBuild(t, map[string]any{
		"gridtype": "lonlat",
		"xvals":    []float64{0, math.Pi / 2},
		"yvals":    []float64{-math.Pi / 4},
		"xunits":   "radians",
		"yunits":   "rad",
	})
	lat, lon := g.LatLon()
	assert.InDeltaSlice(t, []float64{0, 90}, lon.Values, 1e-12)
	assert.InDeltaSlice(t, []float64{-45, -45}, lat.Values, 1e-12)
}

func TestBuild_FillsDefaults(t *testing.T) {
	g := mustBuild(t, europeDescriptor)
	d := g.Descriptor()
	for key, want := range map[string]string{"xname": "lon", "yname": "lat", "xunits": "degrees", "yunits": "degrees"} {
		got, ok := d.Text(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	// The returned descriptor is a copy.
	d.Delete("xname")
	assert.True(t, g.Descriptor().Has("xname"))
}

func TestBuild_RotatedPole(t *testing.T) {
	g := mustBuild(t, `gridtype = projection
grid_mapping = rotated_pole
grid_north_pole_latitude = 36
grid_north_pole_longitude = -170
xfirst = -1
xinc = 1
xsize = 3
yfirst = -1
yinc = 1
ysize = 3
`)
	require.IsType(t, &Projection{}, g)
	assert.Equal(t, []string{"rlat", "rlon"}, g.CoordNames())

	lat, lon := g.LatLon()
	assert.InDelta(t, 54, lat.At(1, 1), 1e-9)
	assert.InDelta(t, 10, lon.At(1, 1), 1e-9)
	// Rotated latitude grows northwards near the rotated equator.
	assert.Greater(t, lat.At(2, 1), lat.At(1, 1))
}

func TestBuild_Proj4(t *testing.T) {
	g := mustBuild(t, map[string]any{
		"gridtype": "projection",
		"proj4":    "+proj=lcc +lat_1=30 +lat_2=60 +lat_0=45 +lon_0=10 +x_0=0 +y_0=0 +a=6370000 +b=6370000 +units=m",
		"xfirst":   -12,
		"xinc":     12,
		"xsize":    3,
		"yfirst":   -12,
		"yinc":     12,
		"ysize":    3,
		"xunits":   "km",
		"yunits":   "km",
	})
	assert.Equal(t, []string{"y", "x"}, g.CoordNames())

	lat, lon := g.LatLon()
	assert.InDelta(t, 45, lat.At(1, 1), 1e-6)
	assert.InDelta(t, 10, lon.At(1, 1), 1e-6)
	assert.InDelta(t, 45+12/111.0, lat.At(2, 1), 0.01)

	x, y := g.(*Projection).PlaneAxes()
	assert.Equal(t, []float64{-12, 0, 12}, x)
	assert.Equal(t, []float64{-12, 0, 12}, y)
}

func TestBuild_CurvilinearAndUnstructured(t *testing.T) {
	c := mustBuild(t, "gridtype = curvilinear\nxsize = 2\nysize = 2\nxvals = 10 11 10.2 11.2\nyvals = 50 50.1 51 51.1\n")
	require.IsType(t, &Curvilinear{}, c)
	assert.Equal(t, []int{2, 2}, c.Shape())
	lat, _ := c.LatLon()
	assert.Equal(t, 51.0, lat.At(1, 0))

	u := mustBuild(t, "gridtype = unstructured\ngridsize = 3\nxvals = 0 270 -179\nyvals = 0 45 10\n")
	require.IsType(t, &Unstructured{}, u)
	assert.Equal(t, 1, u.LenCoords())
	assert.Equal(t, []string{"ncells"}, u.CoordNames())
	_, lon := u.LatLon()
	assert.Equal(t, []float64{0, -90, -179}, lon.Values)
}

func TestNormalizeLon(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0}, {180, 180}, {-180, 180}, {190, -170}, {360, 0}, {-190, 170}, {540, 180}, {-10, -10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLon(tt.in), "NormalizeLon(%v)", tt.in)
	}
}
