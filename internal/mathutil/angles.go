package mathutil

import "math"

// Mod returns x modulo y using floored division, so the result carries the sign of y.
// Mod(-10, 360) = 350. A zero divisor returns x unchanged.
func Mod(x, y float64) float64 {
	if y == 0 {
		return x
	}
	return x - math.Floor(x/y)*y
}

// WrapPhase wraps an angle in radians into [-π, π).
func WrapPhase(phi float64) float64 {
	return Mod(phi+math.Pi, halfDivisor*math.Pi) - math.Pi
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / HalfTurn
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * HalfTurn / math.Pi
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// WrapAzimuth maps an azimuth in degrees from the [0, 360) convention to [-180, 180).
// Values already inside [-180, 180) are returned unchanged.
func WrapAzimuth(deg float64) float64 {
	return Mod(deg+HalfTurn, FullTurn) - HalfTurn
}
