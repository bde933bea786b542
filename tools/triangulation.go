package tools

import (
	"fmt"
	"math"

	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/spatial/r2"
)

// ExampleInnerRadius and ExampleOrder are shared by every ExampleOuterRadii invocation.
const (
	ExampleInnerRadius = 15e9
	ExampleOrder       = 4
)

// ExampleOuterRadii are the outer radii the triangulation is usually shown with.
var ExampleOuterRadii = []float64{5e9, 10e9, 13e9, 21e9, 47e9, 72e9, 115e9}

// Triangulation holds every intermediate value of a triangulation.
type Triangulation struct {
	Inner    float64    `yaml:"a1"`
	Outer    float64    `yaml:"a2"`
	Order    int        `yaml:"n"`
	Alpha    unit.Angle `yaml:"alpha"`
	Chord    float64    `yaml:"c"`
	Apothem  float64    `yaml:"h1"`
	Offset   float64    `yaml:"h2"`
	Distance float64    `yaml:"d"`
}

func (t Triangulation) String() string {
	return fmt.Sprintf("n=%d a1=%g a2=%g α=%.6f° c=%g h1=%g h2=%g d=%g", t.Order, t.Inner, t.Outer, t.Alpha.Deg(), t.Chord, t.Apothem, t.Offset, t.Distance)
}

// Alpha returns the central angle between two adjacent vertices of a regular polygon of order n.
func Alpha(n int) unit.Angle {
	return unit.Angle(2 * math.Pi / float64(n))
}

// Chord returns the length of an edge of the polygon inscribed in a circle of radius a1.
func Chord(a1 float64, n int) float64 {
	return 2 * a1 * (Alpha(n) / 2).Sin()
}

// Apothem returns the distance from the center to the middle of an edge.
func Apothem(a1 float64, n int) float64 {
	return a1 * (Alpha(n) / 2).Cos()
}

// Offset returns how far a2 lies beyond the apothem. It is negative when a2 is inside the polygon.
func Offset(a1, a2 float64, n int) float64 {
	return a2 - Apothem(a1, n)
}

// FarthestDistance returns the distance from a point at radius a2, on the edge bisector,
// to either end of that edge.
func FarthestDistance(a1, a2 float64, n int) float64 {
	return r2.Norm(r2.Vec{X: Chord(a1, n) / 2, Y: Offset(a1, a2, n)})
}

// Triangulate computes every value of the triangulation. n must be at least 3.
func Triangulate(a1, a2 float64, n int) (Triangulation, error) {
	if n < 3 {
		return Triangulation{}, fmt.Errorf("polygon order must be at least 3, got %d", n)
	}
	s, c := (Alpha(n) / 2).Sincos()
	chord, apothem := 2*a1*s, a1*c
	offset := a2 - apothem
	return Triangulation{
		Inner:    a1,
		Outer:    a2,
		Order:    n,
		Alpha:    Alpha(n),
		Chord:    chord,
		Apothem:  apothem,
		Offset:   offset,
		Distance: r2.Norm(r2.Vec{X: chord / 2, Y: offset}),
	}, nil
}
