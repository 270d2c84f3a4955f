// Package projection converts between geographic coordinates and the plane of
// a map projection.
package projection

import "errors"

// ErrInvalidParameter is returned when a projection cannot be set up from the
// given parameters.
var ErrInvalidParameter = errors.New("invalid projection parameter")

// Projection converts geographic coordinates in degrees to and from a
// projected plane. Implementations are immutable and safe for concurrent use.
type Projection interface {
	// Forward maps a geographic longitude/latitude to plane coordinates.
	Forward(lon, lat float64) (x, y float64, err error)
	// Inverse maps plane coordinates back to longitude/latitude.
	Inverse(x, y float64) (lon, lat float64, err error)
}
