// Package sphere provides direction types, coordinate conversions and
// nearest-neighbour queries over sets of directions on the unit sphere.
package sphere

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tphakala/go-binaural/internal/mathutil"
)

// Direction is a spherical direction in degrees.
// Azimuth is positive to the left, elevation positive upwards.
type Direction struct {
	Azimuth   float64
	Elevation float64
}

// ToCartesian returns the unit vector pointing towards d.
func ToCartesian(d Direction) r3.Vec {
	az := mathutil.DegToRad(d.Azimuth)
	el := mathutil.DegToRad(d.Elevation)
	cosEl := math.Cos(el)
	return r3.Vec{
		X: cosEl * math.Cos(az),
		Y: cosEl * math.Sin(az),
		Z: math.Sin(el),
	}
}

// FromCartesian converts a vector to a direction. The vector need not be unit length.
func FromCartesian(v r3.Vec) Direction {
	return Direction{
		Azimuth:   mathutil.RadToDeg(math.Atan2(v.Y, v.X)),
		Elevation: mathutil.RadToDeg(math.Atan2(v.Z, math.Hypot(v.X, v.Y))),
	}
}

// ElevationRange returns the minimum and maximum elevation in dirs.
func ElevationRange(dirs []Direction) (lo, hi float64) {
	if len(dirs) == 0 {
		return 0, 0
	}
	lo, hi = dirs[0].Elevation, dirs[0].Elevation
	for _, d := range dirs[1:] {
		lo = min(lo, d.Elevation)
		hi = max(hi, d.Elevation)
	}
	return lo, hi
}

// IsRing reports whether all directions share one elevation, using the
// normalised elevation span (el+90)/180 and the given tolerance.
func IsRing(dirs []Direction, tolerance float64) bool {
	lo, hi := ElevationRange(dirs)
	return math.Abs((hi+90)/180-(lo+90)/180) < tolerance
}

// FibonacciGrid returns n nearly uniformly spaced directions.
func FibonacciGrid(n int) []Direction {
	dirs := make([]Direction, n)
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := range dirs {
		z := 1 - (2*float64(i)+1)/float64(n)
		r := math.Sqrt(max(0, 1-z*z))
		phi := golden * float64(i)
		dirs[i] = FromCartesian(r3.Vec{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z})
	}
	return dirs
}
