package orbitcalc

import "strings"

// Warnings are derived from a state and never affect any computation.
type Warnings struct {
	AltitudeLow  bool `yaml:"altitude_low"`  // below the reference surface
	PeriapsisLow bool `yaml:"periapsis_low"` // periapsis below the reference surface
}

// CheckAltitude returns the warnings of the provided state.
// NaN values raise no warning.
func CheckAltitude(s OrbitState) Warnings {
	return Warnings{AltitudeLow: s.Alt <= 0, PeriapsisLow: s.Pe <= 0}
}

// GetWarnings is an alias of CheckAltitude.
func GetWarnings(s OrbitState) Warnings {
	return CheckAltitude(s)
}

// Any returns whether at least one warning is raised.
func (w Warnings) Any() bool {
	return w.AltitudeLow || w.PeriapsisLow
}

func (w Warnings) String() string {
	var msgs []string
	if w.AltitudeLow {
		msgs = append(msgs, "below reference surface")
	}
	if w.PeriapsisLow {
		msgs = append(msgs, "periapsis below reference surface")
	}
	return strings.Join(msgs, "; ")
}
