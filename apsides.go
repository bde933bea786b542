package orbitcalc

// Apsides in this package are altitudes above the reference surface, not distances from the
// body center: Pe = a - c - R and Ap = a + c - R, where c is the linear eccentricity.
// None of these functions checks bounds.

// LinearEccentricityToE returns the eccentricity from the linear eccentricity c.
func LinearEccentricityToE(c, a float64) float64 {
	return round(c / a)
}

// EToLinearEccentricity returns the center-to-focus distance.
func EToLinearEccentricity(e, a float64) float64 {
	return round(e * a)
}

// EToApsides returns the apoapsis and periapsis altitudes.
func EToApsides(e, a, R float64) (Ap, Pe float64) {
	c := EToLinearEccentricity(e, a)
	Pe = a - c - R
	Ap = a + c - R
	return
}

// ApsidesToE returns the eccentricity of the orbit going through both apsides.
func ApsidesToE(Pe, Ap, R float64) float64 {
	a := SemiMajorAxisFromApsides(Ap, Pe, R)
	return LinearEccentricityToE(PeriapsisToLinearEccentricity(Pe, a, R), a)
}

// SemiMajorAxisFromApsides returns a = (Ap + Pe + 2R) / 2.
func SemiMajorAxisFromApsides(Ap, Pe, R float64) float64 {
	return (Ap + Pe + 2*R) / 2
}

// PeriapsisToLinearEccentricity returns c from the periapsis.
func PeriapsisToLinearEccentricity(Pe, a, R float64) float64 {
	return a - (Pe + R)
}

// LinearEccentricityToPeriapsis returns the periapsis from c.
func LinearEccentricityToPeriapsis(c, a, R float64) float64 {
	return a - (c + R)
}

// ApoapsisToLinearEccentricity returns c from the apoapsis.
func ApoapsisToLinearEccentricity(Ap, a, R float64) float64 {
	return (Ap + R) - a
}

// LinearEccentricityToApoapsis returns the apoapsis from c.
func LinearEccentricityToApoapsis(c, a, R float64) float64 {
	return c + a - R
}
