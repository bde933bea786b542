package orbitcalc

import (
	"math"
	"time"
)

// SemiMajorAxisToPeriod returns the orbital period (s) of an orbit of semi-major axis a (m)
// around a body of mass M (kg), from Kepler's third law.
// Invalid inputs (M <= 0, a < 0) yield NaN or Inf, which is propagated as is.
func SemiMajorAxisToPeriod(a, M float64) float64 {
	return round(math.Sqrt(math.Pow(a, 3) * fourπ2 / (G * M)))
}

// PeriodToSemiMajorAxis is the inverse of SemiMajorAxisToPeriod.
func PeriodToSemiMajorAxis(T, M float64) float64 {
	return round(math.Cbrt(T * T * G * M / fourπ2))
}

// AltitudeToPeriod returns the period from the altitude above a body of radius R.
func AltitudeToPeriod(Alt, M, R float64) float64 {
	return SemiMajorAxisToPeriod(Alt+R, M)
}

// PeriodToAltitude returns the altitude above a body of radius R from the period.
func PeriodToAltitude(T, M, R float64) float64 {
	return PeriodToSemiMajorAxis(T, M) - R
}

// PeriodDuration returns the period in seconds as a time.Duration.
// Non finite periods return 0.
func PeriodDuration(T float64) time.Duration {
	if !finite(T) || math.Abs(T) > math.MaxInt64/float64(time.Second) {
		return 0
	}
	return time.Duration(T * float64(time.Second))
}
