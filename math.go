package orbitcalc

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	// G is the gravitational constant in m^3 kg^-1 s^-2.
	G = 6.67408e-11
	// DefaultPlaces is the number of decimals every derived value is rounded to.
	DefaultPlaces = 20

	fourπ2 = 4 * math.Pi * math.Pi
)

// Round rounds x to the provided number of decimal places, half away from zero.
// NaN and infinities are returned unchanged.
func Round(x float64, places int) float64 {
	return scalar.Round(x, places)
}

// round rounds to DefaultPlaces, which stabilizes values against floating point noise.
func round(x float64) float64 {
	return Round(x, DefaultPlaces)
}

// finite returns whether v is neither NaN nor infinite.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
