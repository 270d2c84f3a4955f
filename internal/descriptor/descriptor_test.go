package descriptor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rotatedText = `# COSMO-like rotated grid
gridtype  = projection
gridsize  = 12
xsize     = 4
ysize     = 3
xname     = rlon
xunits    = "degrees"
xfirst    = -1.5
xinc      = 1
yvals     = -1 0
            1
grid_mapping = rotated_pole
grid_north_pole_latitude  = 36
grid_north_pole_longitude = -170
`

// entries turns a descriptor into a comparable form.
func entries(d *Descriptor) []Entry {
	return d.Entries()
}

func TestDecode(t *testing.T) {
	d := Decode(rotatedText)

	want := []Entry{
		{"gridtype", Text("projection")},
		{"gridsize", Number(12)},
		{"xsize", Number(4)},
		{"ysize", Number(3)},
		{"xname", Text("rlon")},
		{"xunits", Text("degrees")},
		{"xfirst", Number(-1.5)},
		{"xinc", Number(1)},
		{"yvals", Number(-1, 0, 1)},
		{"grid_mapping", Text("rotated_pole")},
		{"grid_north_pole_latitude", Number(36)},
		{"grid_north_pole_longitude", Number(-170)},
	}
	if diff := cmp.Diff(want, entries(d)); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Idempotent(t *testing.T) {
	first := Decode(rotatedText)
	second := Decode(rotatedText)
	assert.Empty(t, cmp.Diff(entries(first), entries(second)))
}

func TestDecodeFile_MatchesText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.txt")
	require.NoError(t, os.WriteFile(path, []byte(rotatedText), 0o600))

	fromFile, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(entries(Decode(rotatedText)), entries(fromFile)))
}

func TestDecodeLines_MatchesText(t *testing.T) {
	lines := strings.Split(rotatedText, "\n")
	assert.Empty(t, cmp.Diff(entries(Decode(rotatedText)), entries(DecodeLines(lines))))
}

func TestDecode_EdgeCases(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Entry
	}{
		{
			name: "empty value dropped",
			text: "gridtype = lonlat\nxname =\nxsize = 2\n",
			want: []Entry{{"gridtype", Text("lonlat")}, {"xsize", Number(2)}},
		},
		{
			name: "value only on continuation lines",
			text: "xvals =\n 1 2\n 3\n",
			want: []Entry{{"xvals", Number(1, 2, 3)}},
		},
		{
			name: "continuation before any key",
			text: "1 2 3\ngridtype = gaussian\n",
			want: []Entry{{"gridtype", Text("gaussian")}},
		},
		{
			name: "duplicate key overrides in place",
			text: "xsize = 2\nysize = 3\nxsize = 5\n",
			want: []Entry{{"xsize", Number(5)}, {"ysize", Number(3)}},
		},
		{
			name: "invalid characters stripped",
			text: "xunits\t= degrees;\nxinc = 0,5\n",
			want: []Entry{{"xunits", Text("degrees")}, {"xinc", Number(5)}},
		},
		{
			name: "quoted string kept whole",
			text: `proj4 = "+proj=lcc +lat_1=30 +lon_0=10"` + "\n",
			want: []Entry{{"proj4", Text("+proj=lcc +lat_1=30 +lon_0=10")}},
		},
		{
			name: "mixed tokens stay strings",
			text: "names = a 1 b\n",
			want: []Entry{{"names", Text("a", "1", "b")}},
		},
		{
			name: "exponent notation",
			text: "xinc = 2.5e-1 -1E2\n",
			want: []Entry{{"xinc", Number(0.25, -100)}},
		},
		{
			name: "nan is not a number",
			text: "missing = nan\n",
			want: []Entry{{"missing", Text("nan")}},
		},
		{
			name: "comments and blank lines",
			text: "\n# comment = 1\n   \ngridtype = lonlat\n",
			want: []Entry{{"gridtype", Text("lonlat")}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, entries(Decode(tt.text))); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpenString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.txt")
	require.NoError(t, os.WriteFile(path, []byte("gridtype = lonlat\n"), 0o600))

	got, err := OpenString(path)
	require.NoError(t, err)
	assert.Equal(t, "gridtype = lonlat\n", got)

	for _, s := range []string{"", "gridtype = lonlat", "gridtype = lonlat\nxsize = 2", t.TempDir()} {
		got, err := OpenString(s)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	d := New()
	d.Set("gridtype", Text("unstructured"))
	d.Set("gridsize", Number(11))
	d.Set("xvals", Number(0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5))
	d.Set("proj4", Text("+proj=longlat +datum=WGS84"))
	d.Set("codes", Text("1", "2"))
	d.Set("names", Text("a", "b"))

	text := Encode(d)
	assert.Contains(t, text, "\n"+strings.Repeat(" ", 11)+"4 4.5 5\n", "long lists wrap after 8 values")
	assert.Contains(t, text, `proj4    = "+proj=longlat +datum=WGS84"`)

	back := Decode(text)
	if diff := cmp.Diff(entries(d), entries(back)); diff != "" {
		t.Errorf("Decode(Encode()) mismatch (-want +got):\n%s\n%s", diff, text)
	}
}

func TestFromMap(t *testing.T) {
	d, err := FromMap(map[string]any{
		"xvals":    []any{1.0, 2.0},
		"units":    []any{"a", "b"},
		"gridtype": "lonlat",
		"xsize":    2,
		"yvals":    []float32{0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"gridtype", "units", "xsize", "xvals", "yvals"}, d.Keys())

	n, ok := d.Int("xsize")
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	vals, ok := d.Floats("xvals")
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2}, vals)

	_, err = FromMap(map[string]any{"bad": []any{1.0, "x"}})
	assert.Error(t, err)
	_, err = FromMap(map[string]any{"bad": map[string]int{}})
	assert.Error(t, err)
}

func TestDescriptor_CopiesValues(t *testing.T) {
	d := New()
	vals := []float64{1, 2}
	d.Set("xvals", Number(vals...))
	vals[0] = 99

	got, _ := d.Floats("xvals")
	assert.Equal(t, []float64{1, 2}, got)

	got[1] = 42
	again, _ := d.Floats("xvals")
	assert.Equal(t, []float64{1, 2}, again)

	c := d.Clone()
	c.Delete("xvals")
	assert.True(t, d.Has("xvals"))
	assert.Equal(t, 0, c.Len())
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "1 2.5 -3", Number(1, 2.5, -3).String())
	assert.Equal(t, "a b", Text("a", "b").String())
	assert.True(t, Number().IsNumeric())
	assert.False(t, Text().IsNumeric())
}
