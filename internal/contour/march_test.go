package contour_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-levelset/internal/contour"
	"github.com/aescanero/dago-levelset/internal/grid"
)

func sample(t *testing.T, s grid.Sampling, f func(x, y float64) float64) *grid.Grid {
	t.Helper()
	x, y := s.Mesh()
	z, err := grid.Map2(x, y, f)
	require.NoError(t, err)
	return z
}

func paraboloid(x, y float64) float64 { return x*x + y*y }

// TestGeometry_Circle draws x²+y² = 4 on the default sampling and expects a
// single closed curve of radius 2 around the origin.
func TestGeometry_Circle(t *testing.T) {
	s := grid.DefaultSampling()
	z := sample(t, s, paraboloid)
	m := contour.NewMarchingSquares(s)

	require.True(t, m.Exists(z, 4))
	lines := m.Geometry(z, 4)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Closed())

	for _, p := range lines[0] {
		assert.InDelta(t, 2.0, math.Hypot(p.X, p.Y), 0.01)
	}
	assert.InDelta(t, 4*math.Pi, lines[0].Length(), 0.05)
}

// TestGeometry_Absent covers levels the function never reaches.
func TestGeometry_Absent(t *testing.T) {
	s := grid.DefaultSampling()
	z := sample(t, s, paraboloid)
	m := contour.NewMarchingSquares(s)

	assert.False(t, m.Exists(z, -1))
	assert.Empty(t, m.Geometry(z, -1))

	// beyond the corners of the domain
	assert.False(t, m.Exists(z, 250))

	// the minimum lies between samples
	assert.False(t, m.Exists(z, 0))
}

func TestGeometry_ConstantFunction(t *testing.T) {
	s := grid.Sampling{Bounds: grid.Bounds{XMin: -1, XMax: 1, YMin: -1, YMax: 1}, Resolution: 10}
	z := sample(t, s, func(float64, float64) float64 { return 3 })
	m := contour.NewMarchingSquares(s)

	for _, level := range []float64{-1, 0, 3, 5} {
		assert.False(t, m.Exists(z, level), "level %v", level)
	}
}

// TestGeometry_Line checks an open contour crossing the whole domain.
func TestGeometry_Line(t *testing.T) {
	s := grid.Sampling{Bounds: grid.Bounds{XMin: -5, XMax: 5, YMin: -5, YMax: 5}, Resolution: 21}
	z := sample(t, s, func(x, y float64) float64 { return x + y })
	m := contour.NewMarchingSquares(s)

	lines := m.Geometry(z, 1.25)
	require.Len(t, lines, 1)
	assert.False(t, lines[0].Closed())
	for _, p := range lines[0] {
		assert.InDelta(t, 1.25, p.X+p.Y, 1e-9)
	}
}

// TestGeometry_NaNTolerance verifies cells touching non-finite values are
// skipped instead of failing.
func TestGeometry_NaNTolerance(t *testing.T) {
	s := grid.DefaultSampling()
	z := sample(t, s, func(x, y float64) float64 { return math.Log(x) + y*0 })
	m := contour.NewMarchingSquares(s)

	require.True(t, m.Exists(z, 1))
	lines := m.Geometry(z, 1)
	require.NotEmpty(t, lines)
	for _, l := range lines {
		for _, p := range l {
			assert.InDelta(t, math.E, p.X, 0.01)
		}
	}

	allNaN, _ := grid.Fill(5, 5, math.NaN())
	assert.False(t, m.Exists(allNaN, 0))
	assert.Empty(t, m.Geometry(allNaN, 0))
}

// TestGeometry_Saddle exercises the ambiguous cell on x*y = 0.
func TestGeometry_Saddle(t *testing.T) {
	s := grid.Sampling{Bounds: grid.Bounds{XMin: -1, XMax: 1, YMin: -1, YMax: 1}, Resolution: 2}
	z := sample(t, s, func(x, y float64) float64 { return x * y })
	m := contour.NewMarchingSquares(s)

	lines := m.Geometry(z, 0.5)
	assert.Len(t, lines, 2)
	assert.Equal(t, 4, contour.PointCount(lines))
}

func TestGeometry_Deterministic(t *testing.T) {
	s := grid.Sampling{Bounds: grid.Bounds{XMin: -4, XMax: 4, YMin: -4, YMax: 4}, Resolution: 60}
	z := sample(t, s, func(x, y float64) float64 { return math.Sin(x) * math.Cos(y) })
	before := z.Clone()
	m := contour.NewMarchingSquares(s)

	a := m.Geometry(z, 0.3)
	b := m.Geometry(z, 0.3)
	assert.Equal(t, a, b)
	assert.Equal(t, before.Data, z.Data)
}

func TestGeometry_DegenerateInput(t *testing.T) {
	m := contour.NewMarchingSquares(grid.DefaultSampling())
	assert.False(t, m.Exists(nil, 0))
	assert.Nil(t, m.Geometry(nil, 0))

	single, _ := grid.Fill(1, 5, 1)
	assert.False(t, m.Exists(single, 0))
}
