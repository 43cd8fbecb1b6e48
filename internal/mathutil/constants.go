package mathutil

// Power series limits for BesselI0.
const (
	besselMaxTerms = 64    // Upper bound on series terms (converges far earlier for |x| < 50)
	besselEpsilon  = 1e-17 // Relative size of the last term at which the series stops
)

// Angles in degrees.
const (
	FullTurn    = 360.0
	HalfTurn    = 180.0
	QuarterTurn = 90.0
)

const halfDivisor = 2.0
