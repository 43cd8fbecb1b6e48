package hrir

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tphakala/go-binaural/internal/filter"
	"github.com/tphakala/go-binaural/internal/sphere"
)

// Spherical head model parameters for the built-in set.
const (
	DefaultSampleRate = 48000
	DefaultLength     = 256

	headRadius    = 0.0875 // metres
	speedOfSound  = 343.0  // metres per second
	shadowAlphaLo = 0.1    // high-frequency gain at the shadowed ear
	shadowThetaLo = 150.0  // degrees, incidence angle of deepest shadow

	onsetDelay       = 40 // samples before the earliest arrival
	delayHalfWidth   = 16
	delayAttenuation = 80.0

	gridAzimuthStep   = 10
	gridElevationStep = 10
	gridElevationMax  = 80
)

var (
	defaultOnce sync.Once
	defaultSet  *Set
)

// Default returns the built-in HRIR set. The set is generated once from a
// rigid spherical head model and must not be modified; callers that need to
// change it should Clone it first.
func Default() *Set {
	defaultOnce.Do(func() {
		defaultSet = buildDefault()
	})
	return defaultSet
}

// DefaultDirections returns the measurement grid of the built-in set: a
// regular azimuth/elevation lattice plus both poles.
func DefaultDirections() []sphere.Direction {
	var dirs []sphere.Direction
	dirs = append(dirs, sphere.Direction{Azimuth: 0, Elevation: -90})
	for el := -gridElevationMax; el <= gridElevationMax; el += gridElevationStep {
		for az := -180; az < 180; az += gridAzimuthStep {
			dirs = append(dirs, sphere.Direction{Azimuth: float64(az), Elevation: float64(el)})
		}
	}
	dirs = append(dirs, sphere.Direction{Azimuth: 0, Elevation: 90})
	return dirs
}

func buildDefault() *Set {
	set := NewSet(DefaultDirections(), DefaultSampleRate, DefaultLength)
	set.Name = "default"

	ears := [NumEars]r3.Vec{{Y: 1}, {Y: -1}}
	for d, dir := range set.Directions {
		v := sphere.ToCartesian(dir)
		for e, ear := range ears {
			theta := math.Acos(max(-1, min(1, r3.Dot(v, ear))))
			renderEar(set.IR(d, e), theta, float64(set.SampleRate))
		}
	}
	return set
}

// renderEar writes the response of one ear for a source at incidence angle
// theta (radians between the source and the ear axis) into dst.
func renderEar(dst []float64, theta, fs float64) {
	delay := onsetDelay + woodworthDelay(theta)*fs

	h, err := filter.DesignFractionalDelay(filter.FractionalDelayParams{
		NumTaps:     len(dst),
		Delay:       delay,
		HalfWidth:   delayHalfWidth,
		Attenuation: delayAttenuation,
	})
	if err != nil {
		// Parameters are constants within range.
		panic(err)
	}

	headShadow(dst, h, theta, fs)
}

// woodworthDelay returns the arrival time relative to the head centre.
func woodworthDelay(theta float64) float64 {
	a := headRadius / speedOfSound
	if theta < math.Pi/2 {
		return -a * math.Cos(theta)
	}
	return a * (theta - math.Pi/2)
}

// headShadow filters src through the one-pole one-zero spherical head
// shadow model, discretised with the bilinear transform.
func headShadow(dst, src []float64, theta, fs float64) {
	thetaLo := shadowThetaLo * math.Pi / 180
	alpha := (1 + shadowAlphaLo/2) + (1-shadowAlphaLo/2)*math.Cos(theta/thetaLo*math.Pi)

	beta := 2 * speedOfSound / headRadius
	k := 2 * fs
	norm := k + beta
	b0 := (alpha*k + beta) / norm
	b1 := (beta - alpha*k) / norm
	a1 := (beta - k) / norm

	var x1, y1 float64
	for n, x := range src {
		y := b0*x + b1*x1 - a1*y1
		dst[n] = y
		x1, y1 = x, y
	}
}
