package orbitcalc

import (
	"fmt"
	"math"
	"time"
)

// HohmannTransfer is a two-burn transfer between two circular orbits of the same body.
type HohmannTransfer struct {
	From         float64       `yaml:"from"`           // altitude of the initial orbit (m)
	To           float64       `yaml:"to"`             // altitude of the final orbit (m)
	A            float64       `yaml:"a"`              // semi-major axis of the transfer orbit (m)
	DepartureΔv  float64       `yaml:"departure_dv"`   // m/s, negative when lowering the orbit
	ArrivalΔv    float64       `yaml:"arrival_dv"`     // m/s
	TimeOfFlight float64       `yaml:"time_of_flight"` // s
	Duration     time.Duration `yaml:"duration"`
}

// TotalΔv returns the sum of both burn magnitudes.
func (h HohmannTransfer) TotalΔv() float64 {
	return math.Abs(h.DepartureΔv) + math.Abs(h.ArrivalΔv)
}

func (h HohmannTransfer) String() string {
	return fmt.Sprintf("%g -> %g: Δv1=%.3f m/s Δv2=%.3f m/s total=%.3f m/s tof=%s", h.From, h.To, h.DepartureΔv, h.ArrivalΔv, h.TotalΔv(), FormatDuration(h.TimeOfFlight))
}

// OrbitalSpeed returns the speed at distance r from the center on an orbit of semi-major axis a (vis-viva).
func OrbitalSpeed(r, a, M float64) float64 {
	return math.Sqrt(G * M * (2/r - 1/a))
}

// CircularSpeed returns the speed on a circular orbit at the given altitude.
func CircularSpeed(alt float64, body ReferenceBody) float64 {
	r := alt + body.Radius
	return OrbitalSpeed(r, r, body.Mass)
}

// Hohmann computes the transfer from the circular orbit at altitude from to the one at altitude to.
// Both burns are prograde when raising the orbit.
func Hohmann(body ReferenceBody, from, to float64) HohmannTransfer {
	rI, rF := from+body.Radius, to+body.Radius
	aTransfer := 0.5 * (rI + rF)
	vDeparture := OrbitalSpeed(rI, aTransfer, body.Mass)
	vArrival := OrbitalSpeed(rF, aTransfer, body.Mass)
	tof := SemiMajorAxisToPeriod(aTransfer, body.Mass) / 2
	return HohmannTransfer{
		From:         from,
		To:           to,
		A:            aTransfer,
		DepartureΔv:  vDeparture - CircularSpeed(from, body),
		ArrivalΔv:    CircularSpeed(to, body) - vArrival,
		TimeOfFlight: tof,
		Duration:     PeriodDuration(tof),
	}
}
