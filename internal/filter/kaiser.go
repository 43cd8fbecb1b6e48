// Package filter provides the FIR design routines used to synthesise impulse responses.
package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/tphakala/go-binaural/internal/mathutil"
)

const (
	// Filter design constants
	minFilterTaps = 3
	maxFilterTaps = 1023

	// Window normalization
	windowNormalizationFactor = 2.0

	// Sinc function constants
	sincCenterTap     = 1.0
	sincZeroThreshold = 1e-10

	// Kaiser β formula coefficients (Kaiser & Schafer)
	kaiserAttHigh          = 50.0
	kaiserAttMedium        = 21.0
	kaiserBetaHighCoeff    = 0.1102
	kaiserBetaHighOffset   = 8.7
	kaiserBetaMediumCoeff1 = 0.5842
	kaiserBetaMediumPower  = 0.4
	kaiserBetaMediumCoeff2 = 0.07886

	// Filter normalization
	filterGainTarget = 1.0
)

// KaiserWindow generates a Kaiser window of the specified length and β parameter.
//
// w[n] = I₀(β·sqrt(1 - ((n - α)/α)²)) / I₀(β), α = (N-1)/2.
// The window is symmetric: w[i] = w[length-1-i].
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = sincCenterTap
		return window
	}

	alpha := float64(length-1) / windowNormalizationFactor
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha
		window[n] = mathutil.BesselI0(beta*math.Sqrt(1.0-x*x)) / i0Beta
	}

	return window
}

// KaiserBeta returns the Kaiser β for a stopband attenuation in dB.
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		d := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(d, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*d
	default:
		return 0
	}
}

// FractionalDelayParams holds parameters for fractional-delay filter design.
type FractionalDelayParams struct {
	// NumTaps is the filter length. The nominal delay of the filter is
	// Delay samples; the taps must cover Delay plus half the interpolation kernel.
	NumTaps int

	// Delay is the (possibly fractional) delay in samples.
	Delay float64

	// HalfWidth is the one-sided support of the windowed sinc kernel, in samples.
	HalfWidth int

	// Attenuation is the design stopband attenuation in dB (sets the Kaiser β).
	Attenuation float64
}

// Validate checks if filter parameters are valid.
func (fp *FractionalDelayParams) Validate() error {
	if fp.NumTaps < minFilterTaps {
		return fmt.Errorf("filter too short: %d taps (minimum %d)", fp.NumTaps, minFilterTaps)
	}

	if fp.NumTaps > maxFilterTaps {
		return fmt.Errorf("filter too long: %d taps (maximum %d)", fp.NumTaps, maxFilterTaps)
	}

	if fp.HalfWidth < 1 {
		return fmt.Errorf("invalid kernel half width: %d", fp.HalfWidth)
	}

	if fp.Delay < 0 || fp.Delay > float64(fp.NumTaps-1) {
		return fmt.Errorf("invalid delay: %f (must be in [0, %d])", fp.Delay, fp.NumTaps-1)
	}

	if fp.Attenuation < 0 {
		return fmt.Errorf("invalid attenuation: %f dB (must be positive)", fp.Attenuation)
	}

	return nil
}

// DesignFractionalDelay designs a Kaiser-windowed sinc that delays its input by
// params.Delay samples. Taps outside Delay±HalfWidth are zero and the result is
// normalised to unity DC gain.
func DesignFractionalDelay(params FractionalDelayParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	beta := KaiserBeta(params.Attenuation)
	width := float64(params.HalfWidth)
	i0Beta := mathutil.BesselI0(beta)

	h := make([]float64, params.NumTaps)
	for n := range params.NumTaps {
		x := float64(n) - params.Delay
		if math.Abs(x) >= width {
			continue
		}

		sinc := sincCenterTap
		if math.Abs(x) > sincZeroThreshold {
			sinc = math.Sin(math.Pi*x) / (math.Pi * x)
		}

		r := x / width
		h[n] = sinc * mathutil.BesselI0(beta*math.Sqrt(1.0-r*r)) / i0Beta
	}

	sum := f64.Sum(h)
	if math.Abs(sum) > sincZeroThreshold {
		f64.Scale(h, h, filterGainTarget/sum)
	}

	return h, nil
}

// FilterResponse holds the frequency response of a filter.
type FilterResponse struct {
	// Frequencies at which response was calculated (normalized, 0 to 0.5)
	Frequencies []float64

	// Magnitude response at each frequency (linear scale)
	Magnitude []float64

	// Phase response at each frequency (radians)
	Phase []float64
}

// ComputeFrequencyResponse evaluates the DTFT of a FIR filter at numPoints
// frequencies between DC and Nyquist.
func ComputeFrequencyResponse(coeffs []float64, numPoints int) FilterResponse {
	if numPoints <= 0 {
		numPoints = 512
	}

	response := FilterResponse{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
		Phase:       make([]float64, numPoints),
	}

	for k := range numPoints {
		freq := float64(k) / float64(windowNormalizationFactor*numPoints)
		response.Frequencies[k] = freq

		var realPart, imagPart float64
		omega := windowNormalizationFactor * math.Pi * freq

		for n, h := range coeffs {
			angle := omega * float64(n)
			realPart += h * math.Cos(angle)
			imagPart -= h * math.Sin(angle)
		}

		response.Magnitude[k] = math.Hypot(realPart, imagPart)
		response.Phase[k] = math.Atan2(imagPart, realPart)
	}

	return response
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	const (
		minMagnitude = 1e-10 // Avoid log(0)
		dbMultiplier = 20.0  // 20*log10 for magnitude
	)

	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
