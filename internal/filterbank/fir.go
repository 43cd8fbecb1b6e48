package filterbank

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// FIRToBands converts impulse responses to per-band transfer coefficients for a
// filterbank with the given hop. firs is indexed [filter][sample]; the result is
// indexed [band][filter].
//
// Each response is sampled at the band centre frequencies. Responses longer
// than the transform are folded modulo its length, which evaluates the full
// response exactly at those frequencies.
func FIRToBands(firs [][]float64, hop int) [][]complex128 {
	fftSize := fftOverlap * hop
	bands := fftSize/2 + 1
	fft := fourier.NewFFT(fftSize)

	folded := make([]float64, fftSize)
	spec := make([]complex128, bands)

	out := make([][]complex128, bands)
	for b := range out {
		out[b] = make([]complex128, len(firs))
	}

	for i, h := range firs {
		clear(folded)
		for n, v := range h {
			folded[n%fftSize] += v
		}
		fft.Coefficients(spec, folded)
		for b, c := range spec {
			out[b][i] = c
		}
	}

	return out
}
