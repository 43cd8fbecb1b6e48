// Package diffeq removes the direction-independent colouration from a
// subband HRTF table, either with a stored dummy-head correction filter or
// with the diffuse-field average of the table itself.
package diffeq

import (
	"fmt"
	"math"

	"github.com/tphakala/go-binaural/internal/filterbank"
	"github.com/tphakala/go-binaural/internal/hrir"
	"github.com/tphakala/go-binaural/internal/simdops"
	"github.com/tphakala/go-binaural/internal/sphere"
)

// minFieldLevel guards the division by the diffuse-field magnitude.
const minFieldLevel = 1e-12

// Mode selects where the correction comes from.
type Mode interface {
	// correction returns one complex gain per band for t.
	correction(t *hrir.Table, dirs []sphere.Direction) ([]complex128, error)
	String() string
}

// ReferenceHead multiplies every response by a fixed correction filter.
// A nil CIR selects the built-in dummy-head filter.
type ReferenceHead struct {
	CIR []float64
}

// MeasuredField divides every response by the RMS diffuse-field magnitude of
// the table, weighting each direction by the area of sphere it covers.
type MeasuredField struct{}

func (ReferenceHead) String() string { return "reference head" }
func (MeasuredField) String() string { return "measured field" }

func (m ReferenceHead) correction(t *hrir.Table, _ []sphere.Direction) ([]complex128, error) {
	cir := m.CIR
	if cir == nil {
		cir = referenceCIR[:]
	}
	hop := t.Bands - 1
	if hop < 1 {
		return nil, fmt.Errorf("diffeq: table has %d bands", t.Bands)
	}

	bands := filterbank.FIRToBands([][]float64{cir}, hop)
	ctf := make([]complex128, t.Bands)
	for b := range ctf {
		ctf[b] = bands[b][0]
	}
	return ctf, nil
}

func (MeasuredField) correction(t *hrir.Table, dirs []sphere.Direction) ([]complex128, error) {
	if len(dirs) != t.NumDirs {
		return nil, fmt.Errorf("diffeq: %d directions for %d table entries", len(dirs), t.NumDirs)
	}
	weights, err := sphere.GridWeights(dirs)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, w := range weights {
		total += w
	}

	power := make([]float64, t.Bands)
	for d, w := range weights {
		mags := t.DirectionMags(d)
		for b := range t.Bands {
			var p float64
			for e := range hrir.NumEars {
				m := mags[b*hrir.NumEars+e]
				p += m * m
			}
			power[b] += w * p / hrir.NumEars
		}
	}

	ctf := make([]complex128, t.Bands)
	for b, p := range power {
		level := math.Sqrt(p / total)
		if level < minFieldLevel {
			ctf[b] = 1
			continue
		}
		ctf[b] = complex(1/level, 0)
	}
	return ctf, nil
}

// Equalize returns a copy of t with the correction selected by mode applied
// to every direction, band and ear. Magnitudes of the copy are recomputed.
// On error t is returned unchanged together with the error.
func Equalize(t *hrir.Table, dirs []sphere.Direction, mode Mode) (*hrir.Table, error) {
	ctf, err := mode.correction(t, dirs)
	if err != nil {
		return t, fmt.Errorf("diffeq: %s: %w", mode, err)
	}

	// Repeat each band's gain for both ears to match the [band][ear] layout.
	perEar := make([]complex128, t.Bands*hrir.NumEars)
	for b, c := range ctf {
		for e := range hrir.NumEars {
			perEar[b*hrir.NumEars+e] = c
		}
	}

	out := t.Clone()
	for d := range out.NumDirs {
		dir := out.Direction(d)
		simdops.MulComplex(dir, dir, perEar)
	}
	out.UpdateMagnitudes()

	return out, nil
}
