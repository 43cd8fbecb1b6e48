// Package testutil provides reusable test helpers for the binaural renderer tests.
package testutil

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	WeightTolerance  = 1e-5
	ComplexTolerance = 1e-9
	SilenceThreshold = 1e-12
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertMonotonic verifies that a slice is monotonically increasing.
func AssertMonotonic(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return assert.Fail(t, "not monotonic",
				"s[%d]=%f < s[%d]=%f", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

// AssertWeightsNormalized verifies that interpolation weights are non-negative and sum to one.
func AssertWeightsNormalized(t *testing.T, weights []float64, msgAndArgs ...any) bool {
	t.Helper()
	var sum float64
	for i, w := range weights {
		if w < 0 {
			return assert.Fail(t, "negative weight", "w[%d]=%g", i, w)
		}
		sum += w
	}
	return assert.InDelta(t, 1.0, sum, WeightTolerance, msgAndArgs...)
}

// AssertComplexInDelta verifies two complex slices element-wise.
func AssertComplexInDelta(t *testing.T, expected, actual []complex128, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if d := cmplx.Abs(expected[i] - actual[i]); d > tolerance {
			return assert.Fail(t, "complex values differ",
				"index %d: expected %v, got %v (|diff|=%g)", i, expected[i], actual[i], d)
		}
	}
	return true
}

// Energy returns the sum of squares of s.
func Energy(s []float64) float64 {
	var e float64
	for _, v := range s {
		e += v * v
	}
	return e
}

// AssertSilent verifies that every sample of s is (numerically) zero.
func AssertSilent(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.Abs(v) > SilenceThreshold {
			return assert.Fail(t, "expected silence", "s[%d]=%g", i, v)
		}
	}
	return true
}

// Impulse returns a unit impulse of length n at position pos.
func Impulse(n, pos int) []float64 {
	s := make([]float64, n)
	if pos >= 0 && pos < n {
		s[pos] = 1
	}
	return s
}

// Sine returns n samples of a unit-amplitude sine at freq Hz.
func Sine(n int, freq, sampleRate float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return s
}
