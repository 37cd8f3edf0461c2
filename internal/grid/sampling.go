package grid

import (
	"fmt"
	"math"
)

// Default session constants
const (
	DefaultMin        = -10.0
	DefaultMax        = 10.0
	DefaultResolution = 400
)

// Bounds is the axis-aligned sampled domain
type Bounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// Sampling describes the outer-product sampling of Bounds with Resolution
// samples per axis
type Sampling struct {
	Bounds     Bounds `json:"bounds"`
	Resolution int    `json:"resolution"`
}

// DefaultSampling returns the session default: [-10,10]×[-10,10] at 400×400
func DefaultSampling() Sampling {
	return Sampling{
		Bounds: Bounds{
			XMin: DefaultMin,
			XMax: DefaultMax,
			YMin: DefaultMin,
			YMax: DefaultMax,
		},
		Resolution: DefaultResolution,
	}
}

// Validate checks bounds and resolution
func (s Sampling) Validate() error {
	b := s.Bounds
	for _, v := range []float64{b.XMin, b.XMax, b.YMin, b.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bound", ErrBadBounds)
		}
	}
	if b.XMin >= b.XMax || b.YMin >= b.YMax {
		return fmt.Errorf("%w: [%g,%g]x[%g,%g]", ErrBadBounds, b.XMin, b.XMax, b.YMin, b.YMax)
	}
	if s.Resolution < 2 {
		return fmt.Errorf("%w: resolution %d, need at least 2", ErrBadShape, s.Resolution)
	}
	return nil
}

// XAt returns the x coordinate of column j
func (s Sampling) XAt(j int) float64 {
	return linspaceAt(s.Bounds.XMin, s.Bounds.XMax, s.Resolution, j)
}

// YAt returns the y coordinate of row i
func (s Sampling) YAt(i int) float64 {
	return linspaceAt(s.Bounds.YMin, s.Bounds.YMax, s.Resolution, i)
}

// XStep returns the spacing between adjacent columns
func (s Sampling) XStep() float64 {
	return (s.Bounds.XMax - s.Bounds.XMin) / float64(s.Resolution-1)
}

// YStep returns the spacing between adjacent rows
func (s Sampling) YStep() float64 {
	return (s.Bounds.YMax - s.Bounds.YMin) / float64(s.Resolution-1)
}

// Mesh returns the co-indexed coordinate grids. Row i holds y = YAt(i) and
// column j holds x = XAt(j), so X varies along columns and Y along rows.
func (s Sampling) Mesh() (x, y *Grid) {
	n := s.Resolution
	x = &Grid{Rows: n, Cols: n, Data: make([]float64, n*n)}
	y = &Grid{Rows: n, Cols: n, Data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		yi := s.YAt(i)
		for j := 0; j < n; j++ {
			x.Data[i*n+j] = s.XAt(j)
			y.Data[i*n+j] = yi
		}
	}
	return x, y
}

// Key returns a stable identifier for cache keys
func (s Sampling) Key() string {
	b := s.Bounds
	return fmt.Sprintf("%g:%g:%g:%g:%d", b.XMin, b.XMax, b.YMin, b.YMax, s.Resolution)
}

func linspaceAt(lo, hi float64, n, k int) float64 {
	if k == n-1 {
		return hi
	}
	return lo + float64(k)*(hi-lo)/float64(n-1)
}
