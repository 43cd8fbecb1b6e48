// Package mathutil provides the small numeric helpers shared by the HRTF
// preprocessing and rendering packages.
package mathutil

import "math"

// BesselI0 computes the modified Bessel function of the first kind, order zero: I₀(x).
// It is used for Kaiser window design when building the fractional-delay filters of the
// embedded HRIR set.
//
// The series I₀(x) = Σ ((x/2)^k / k!)² converges quickly for the window β values used
// here (β < 20), so no asymptotic branch is needed.
func BesselI0(x float64) float64 {
	half := math.Abs(x) / halfDivisor
	sum, term := 1.0, 1.0
	for k := 1; k < besselMaxTerms; k++ {
		f := half / float64(k)
		term *= f * f
		sum += term
		if term < besselEpsilon*sum {
			break
		}
	}
	return sum
}
