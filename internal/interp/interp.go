// Package interp produces the HRTF of an arbitrary direction from the three
// measured neighbours selected by an interpolation table.
package interp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/tphakala/go-binaural/internal/hrir"
	"github.com/tphakala/go-binaural/internal/mathutil"
	"github.com/tphakala/go-binaural/internal/simdops"
	"github.com/tphakala/go-binaural/internal/sphere"
	"github.com/tphakala/go-binaural/internal/vbap"
)

// DefaultPhaseCutoff is the frequency in Hz above which MagnitudeITD applies
// no interaural phase difference.
const DefaultPhaseCutoff = 1500.0

// Method combines neighbouring HRTFs. dst is laid out [band][ear] and must
// hold t.Bands*hrir.NumEars values; it is fully overwritten.
type Method interface {
	Interpolate(dst []complex128, t *hrir.Table, idx [vbap.NumGains]int, w [vbap.NumGains]float64)
}

// Direct takes the weighted complex sum of the neighbours.
type Direct struct{}

// MagnitudeITD interpolates magnitudes and ITDs separately and rebuilds the
// interaural phase from the interpolated ITD below Cutoff.
type MagnitudeITD struct {
	// Cutoff in Hz; zero selects DefaultPhaseCutoff.
	Cutoff float64
}

// Interpolate implements Method.
func (Direct) Interpolate(dst []complex128, t *hrir.Table, idx [vbap.NumGains]int, w [vbap.NumGains]float64) {
	clear(dst)
	for i := range vbap.NumGains {
		if w[i] == 0 {
			continue
		}
		cmplxs.AddScaled(dst, complex(w[i], 0), t.Direction(idx[i]))
	}
}

// ITD returns the weighted average ITD of the neighbours in seconds.
func (MagnitudeITD) ITD(t *hrir.Table, idx [vbap.NumGains]int, w [vbap.NumGains]float64) float64 {
	var itds [vbap.NumGains]float64
	for i, d := range idx {
		itds[i] = t.ITDs[d]
	}
	return simdops.For[float64]().DotProductUnsafe(w[:], itds[:])
}

// Interpolate implements Method.
func (m MagnitudeITD) Interpolate(dst []complex128, t *hrir.Table, idx [vbap.NumGains]int, w [vbap.NumGains]float64) {
	cutoff := m.Cutoff
	if cutoff == 0 {
		cutoff = DefaultPhaseCutoff
	}

	itd := m.ITD(t, idx, w)

	// Accumulate magnitudes in the real parts of dst.
	clear(dst)
	for i := range vbap.NumGains {
		if w[i] == 0 {
			continue
		}
		for k, mag := range t.DirectionMags(idx[i]) {
			dst[k] += complex(w[i]*mag, 0)
		}
	}

	for b := range t.Bands {
		var phase float64
		if f := t.Freqs[b]; f < cutoff {
			phase = (mathutil.Mod(2*math.Pi*f*itd+math.Pi, 2*math.Pi) - math.Pi) / 2
		}
		rot := cmplx.Rect(1, phase)
		l, r := b*hrir.NumEars, b*hrir.NumEars+1
		dst[l] = complex(real(dst[l]), 0) * rot
		dst[r] = complex(real(dst[r]), 0) * cmplx.Conj(rot)
	}
}

// ForDirection looks dir up in gains and interpolates it into dst with m.
func ForDirection(dst []complex128, t *hrir.Table, gains *vbap.Table, dir sphere.Direction, m Method) {
	idx, w := gains.Lookup(dir.Azimuth, dir.Elevation)
	m.Interpolate(dst, t, idx, w)
}
