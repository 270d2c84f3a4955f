package projection

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// RotPole is the CF rotated_pole mapping. Plane coordinates are the longitude
// and latitude, in degrees, of the frame whose north pole sits at the given
// geographic position.
type RotPole struct {
	lat, lon float64 // pole position, radians

	// rot maps geographic unit vectors to rotated ones; its transpose is the
	// inverse.
	rot *mat.Dense
}

// NewRotPole builds a rotated-pole projection from the geographic latitude and
// longitude of the rotated north pole, in degrees. Longitudes beyond 180 are
// folded to 360-lon.
func NewRotPole(poleLat, poleLon float64) (*RotPole, error) {
	if math.IsNaN(poleLat) || poleLat < -90 || poleLat > 90 {
		return nil, fmt.Errorf("%w: pole latitude %v outside [-90, 90]", ErrInvalidParameter, poleLat)
	}
	if math.IsNaN(poleLon) || math.IsInf(poleLon, 0) {
		return nil, fmt.Errorf("%w: pole longitude %v", ErrInvalidParameter, poleLon)
	}
	poleLon = math.Mod(poleLon, 360)
	switch {
	case poleLon > 180:
		poleLon = 360 - poleLon
	case poleLon < -180:
		poleLon += 360
	}

	theta := (90 - poleLat) * deg2rad
	phi := poleLon * deg2rad
	if math.Abs(poleLat) != 90 {
		phi += math.Pi
	}

	return &RotPole{
		lat: poleLat * deg2rad,
		lon: poleLon * deg2rad,
		rot: rotation(theta, phi),
	}, nil
}

// rotation returns Ry(theta) * Rz(-phi).
func rotation(theta, phi float64) *mat.Dense {
	st, ct := math.Sincos(theta)
	sp, cp := math.Sincos(phi)
	ry := mat.NewDense(3, 3, []float64{
		ct, 0, st,
		0, 1, 0,
		-st, 0, ct,
	})
	rz := mat.NewDense(3, 3, []float64{
		cp, sp, 0,
		-sp, cp, 0,
		0, 0, 1,
	})
	var m mat.Dense
	m.Mul(ry, rz)
	return &m
}

// PoleLatitude returns the geographic latitude of the rotated pole in degrees.
func (r *RotPole) PoleLatitude() float64 {
	return r.lat * rad2deg
}

// PoleLongitude returns the normalised geographic longitude of the rotated
// pole in degrees.
func (r *RotPole) PoleLongitude() float64 {
	return r.lon * rad2deg
}

// Forward maps geographic lon/lat to rotated lon/lat.
func (r *RotPole) Forward(lon, lat float64) (float64, float64, error) {
	x, y := r.apply(r.rot, lon, lat)
	return x, y, nil
}

// Inverse maps rotated lon/lat back to geographic lon/lat.
func (r *RotPole) Inverse(x, y float64) (float64, float64, error) {
	lon, lat := r.apply(r.rot.T(), x, y)
	return lon, lat, nil
}

func (r *RotPole) apply(m mat.Matrix, lon, lat float64) (float64, float64) {
	v := toVector(lon*deg2rad, lat*deg2rad)
	var out mat.VecDense
	out.MulVec(m, v)
	return fromVector(out.AtVec(0), out.AtVec(1), out.AtVec(2))
}

func toVector(lon, lat float64) *mat.VecDense {
	slat, clat := math.Sincos(lat)
	slon, clon := math.Sincos(lon)
	return mat.NewVecDense(3, []float64{clat * clon, clat * slon, slat})
}

// fromVector returns lon/lat in degrees. atan2 against the horizontal norm
// gives the same latitude as asin(z) without losing precision near the poles.
func fromVector(x, y, z float64) (float64, float64) {
	h := math.Hypot(x, y)
	lat := math.Atan2(z, h) * rad2deg
	if h == 0 || math.Abs(lat) == 90 {
		return 0, lat
	}
	return math.Atan2(y, x) * rad2deg, lat
}
