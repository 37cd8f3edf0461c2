package contour

import (
	"math"

	"github.com/aescanero/dago-levelset/internal/grid"
)

// Point is a location in world coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polyline is a connected run of points. A closed polyline repeats its first
// point at the end.
type Polyline []Point

// Closed reports whether the polyline ends where it starts
func (p Polyline) Closed() bool {
	return len(p) > 2 && p[0] == p[len(p)-1]
}

// Length returns the euclidean length of the polyline
func (p Polyline) Length() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += math.Hypot(p[i].X-p[i-1].X, p[i].Y-p[i-1].Y)
	}
	return total
}

// Provider answers contour queries over a ValueGrid
type Provider interface {
	// Exists reports whether the contour at level is non-empty
	Exists(values *grid.Grid, level float64) bool

	// Geometry returns the contour at level, possibly empty
	Geometry(values *grid.Grid, level float64) []Polyline
}

// PointCount returns the total number of points across lines
func PointCount(lines []Polyline) int {
	n := 0
	for _, l := range lines {
		n += len(l)
	}
	return n
}
