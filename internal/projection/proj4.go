package projection

import (
	"fmt"
	"strings"

	"github.com/ctessum/geom/proj"
)

// ellipsoidParams are the PROJ parameters copied onto the geographic side of a
// Proj4 transform so both sides share one datum.
var ellipsoidParams = map[string]bool{
	"+a":       true,
	"+b":       true,
	"+rf":      true,
	"+R":       true,
	"+ellps":   true,
	"+datum":   true,
	"+towgs84": true,
}

// Proj4 is a projection described by a PROJ.4 definition string. Plane
// coordinates are in metres.
type Proj4 struct {
	def     string
	forward proj.Transformer
	inverse proj.Transformer
}

// NewProj4 parses def, e.g. "+proj=lcc +lat_1=30 +lat_2=60 +lon_0=10".
func NewProj4(def string) (*Proj4, error) {
	def = strings.TrimSpace(def)
	if def == "" {
		return nil, fmt.Errorf("%w: empty PROJ definition", ErrInvalidParameter)
	}
	plane, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %q: %v", ErrInvalidParameter, def, err)
	}
	// Parse accepts any +proj name; the transformer lookup does not.
	if _, _, err := plane.Transformers(); err != nil {
		return nil, fmt.Errorf("%w: unsupported projection in %q: %v", ErrInvalidParameter, def, err)
	}
	geo, err := proj.Parse(geographicDef(def))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to derive geographic system for %q: %v", ErrInvalidParameter, def, err)
	}

	forward, err := geo.NewTransform(plane)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create forward transform for %q: %v", ErrInvalidParameter, def, err)
	}
	inverse, err := plane.NewTransform(geo)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create inverse transform for %q: %v", ErrInvalidParameter, def, err)
	}
	// Identical systems yield nil transformers.
	if forward == nil {
		forward = identity
	}
	if inverse == nil {
		inverse = identity
	}

	p := &Proj4{def: def, forward: forward, inverse: inverse}
	if _, _, err := p.Forward(plane.Long0*rad2deg, plane.Lat0*rad2deg); err != nil {
		return nil, fmt.Errorf("%w: %q cannot project its own origin: %v", ErrInvalidParameter, def, err)
	}
	return p, nil
}

func identity(x, y float64) (float64, float64, error) {
	return x, y, nil
}

// geographicDef returns a longlat definition on the same ellipsoid as def.
func geographicDef(def string) string {
	parts := []string{"+proj=longlat"}
	for _, tok := range strings.Fields(def) {
		key, _, _ := strings.Cut(tok, "=")
		if ellipsoidParams[key] {
			parts = append(parts, tok)
		}
	}
	return strings.Join(parts, " ")
}

// String returns the PROJ definition.
func (p *Proj4) String() string {
	return p.def
}

// Forward maps lon/lat in degrees to plane coordinates.
func (p *Proj4) Forward(lon, lat float64) (float64, float64, error) {
	x, y, err := p.forward(lon, lat)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to project (%g, %g): %w", lon, lat, err)
	}
	return x, y, nil
}

// Inverse maps plane coordinates to lon/lat in degrees.
func (p *Proj4) Inverse(x, y float64) (float64, float64, error) {
	lon, lat, err := p.inverse(x, y)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to unproject (%g, %g): %w", x, y, err)
	}
	return lon, lat, nil
}
