package planner_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-levelset/internal/contour"
	"github.com/aescanero/dago-levelset/internal/grid"
	"github.com/aescanero/dago-levelset/internal/planner"
)

// countingProvider wraps a provider and counts existence queries
type countingProvider struct {
	contour.Provider
	exists int
}

func (c *countingProvider) Exists(values *grid.Grid, level float64) bool {
	c.exists++
	return c.Provider.Exists(values, level)
}

func sampled(t *testing.T, f func(x, y float64) float64) (*grid.Grid, contour.Provider) {
	t.Helper()
	s := grid.Sampling{Bounds: grid.Bounds{XMin: -10, XMax: 10, YMin: -10, YMax: 10}, Resolution: 200}
	x, y := s.Mesh()
	z, err := grid.Map2(x, y, f)
	require.NoError(t, err)
	return z, contour.NewMarchingSquares(s)
}

func paraboloid(x, y float64) float64 { return x*x + y*y }

//----------------------------------------------------------------------------//
// Candidates
//----------------------------------------------------------------------------//

func TestCandidates(t *testing.T) {
	c := planner.Candidates(4, 20)
	require.Len(t, c, 11+21+11)
	assert.Equal(t, 0.0, c[0])
	assert.Equal(t, 4.0, c[10])
	assert.Equal(t, 4.0, c[11])
	assert.Equal(t, -4.0, c[31])
	assert.Equal(t, -4.0, c[32])
	assert.Equal(t, 0.0, c[len(c)-1])

	// amplitude sign does not matter
	assert.Equal(t, c, planner.Candidates(-4, 20))
}

func TestCandidates_Degenerate(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0}, planner.Candidates(0, 20))

	// frame count 0 falls back to a unit step
	assert.Equal(t, 1.0, planner.Step(3, 0))
	assert.Equal(t,
		[]float64{0, 1, 2, 3, 3, 2, 1, 0, -1, -2, -3, -3, -2, -1, 0},
		planner.Candidates(3, 0))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.2, planner.Round(0.4*3, 3))
	assert.Equal(t, 0.123, planner.Round(0.12345, 3))
	assert.Equal(t, -0.5, planner.Round(-0.4999999, 3))
	assert.False(t, math.Signbit(planner.Round(-0.0001, 3)), "negative zero is normalised")

	// scaling would overflow, the value has no fractional digits to drop
	assert.Equal(t, 1e306, planner.Round(1e306, 3))
	assert.Equal(t, -1e306, planner.Round(-1e306, 3))
	assert.Equal(t, 5e300, planner.Round(5e300, 12))
}

//----------------------------------------------------------------------------//
// Filtered policy
//----------------------------------------------------------------------------//

// TestPlan_ZeroAmplitude returns exactly [0].
func TestPlan_ZeroAmplitude(t *testing.T) {
	z, provider := sampled(t, paraboloid)
	seq, err := planner.New(provider, planner.DefaultOptions()).PlanGrid(z, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, seq.Levels)
	assert.Equal(t, []float64{0}, seq.Accepted)
}

// TestPlan_Paraboloid keeps the positive levels (circles) and zero, drops the
// negative ones, and plays them there and back.
func TestPlan_Paraboloid(t *testing.T) {
	z, provider := sampled(t, paraboloid)
	seq, err := planner.New(provider, planner.DefaultOptions()).PlanGrid(z, 4)
	require.NoError(t, err)

	want := make([]float64, 0, 11)
	for k := 0; k <= 10; k++ {
		want = append(want, planner.Round(float64(k)*0.4, 3))
	}
	assert.Equal(t, want, seq.Accepted)
	require.Len(t, seq.Levels, 21)
	assert.Equal(t, want, seq.Levels[:11])
	assert.Equal(t, 4.0, seq.Levels[10])
	assert.Equal(t, 3.6, seq.Levels[11])
	assert.Equal(t, 0.0, seq.Levels[20])
	assert.Equal(t, planner.PolicyFiltered, seq.Policy)
	assert.InDelta(t, 0.4, seq.Step, 1e-12)
}

// TestPlan_NoContourAnywhere falls back to the single zero frame.
func TestPlan_NoContourAnywhere(t *testing.T) {
	z, provider := sampled(t, func(float64, float64) float64 { return 7 })
	seq, err := planner.New(provider, planner.DefaultOptions()).PlanGrid(z, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, seq.Levels)
}

// TestPlan_CycleProperties checks round trip, presence of zero and the
// absence of adjacent duplicates for a spread of functions and amplitudes.
func TestPlan_CycleProperties(t *testing.T) {
	funcs := map[string]func(x, y float64) float64{
		"paraboloid": paraboloid,
		"saddle":     func(x, y float64) float64 { return x*x - y*y },
		"plane":      func(x, y float64) float64 { return x + 2*y },
		"waves":      func(x, y float64) float64 { return math.Sin(x) * math.Cos(y) },
		"log":        func(x, y float64) float64 { return math.Log(x*y) },
	}
	amplitudes := []float64{0.001, 0.5, -1, 3, 4, 17.3, -250}

	for name, f := range funcs {
		z, provider := sampled(t, f)
		p := planner.New(provider, planner.DefaultOptions())
		for _, n := range amplitudes {
			seq, err := p.PlanGrid(z, n)
			require.NoError(t, err, "%s N=%v", name, n)
			require.NotEmpty(t, seq.Levels)

			assert.Equal(t, seq.Levels[0], seq.Levels[len(seq.Levels)-1], "%s N=%v round trip", name, n)
			assert.Contains(t, seq.Levels, 0.0, "%s N=%v", name, n)
			for i := 1; i < len(seq.Levels); i++ {
				assert.NotEqual(t, seq.Levels[i-1], seq.Levels[i], "%s N=%v duplicate at %d", name, n, i)
			}
		}
	}
}

// TestPlan_SharedValueGrid verifies the value source is consulted once and
// each distinct level is tested once.
func TestPlan_SharedValueGrid(t *testing.T) {
	z, provider := sampled(t, paraboloid)
	counting := &countingProvider{Provider: provider}

	calls := 0
	source := func() (*grid.Grid, error) {
		calls++
		return z, nil
	}

	_, err := planner.New(counting, planner.DefaultOptions()).Plan(source, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 21, counting.exists, "levels -4..4 in steps of 0.4")
}

func TestPlan_SourceError(t *testing.T) {
	_, provider := sampled(t, paraboloid)
	boom := errors.New("shape mismatch")

	_, err := planner.New(provider, planner.DefaultOptions()).Plan(func() (*grid.Grid, error) {
		return nil, boom
	}, 4)
	require.ErrorIs(t, err, boom)

	_, err = planner.New(provider, planner.DefaultOptions()).Plan(planner.Static(nil), 4)
	require.ErrorIs(t, err, planner.ErrNoValues)

	_, err = planner.New(nil, planner.DefaultOptions()).PlanGrid(nil, 4)
	require.ErrorIs(t, err, planner.ErrNoProvider)
}

func TestPlan_InvalidInput(t *testing.T) {
	z, provider := sampled(t, paraboloid)

	for _, a := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), math.MaxFloat64, -2e307} {
		_, err := planner.New(provider, planner.DefaultOptions()).PlanGrid(z, a)
		require.ErrorIs(t, err, planner.ErrBadAmplitude, "amplitude %v", a)
	}

	cases := []planner.Options{
		{FrameCount: -1, Digits: 3, Policy: planner.PolicyFiltered},
		{FrameCount: planner.MaxFrameCount + 1, Digits: 3, Policy: planner.PolicyFiltered},
		{FrameCount: math.MaxInt32, Digits: 3, Policy: planner.PolicyUniform},
		{FrameCount: 20, Digits: -1, Policy: planner.PolicyFiltered},
		{FrameCount: 20, Digits: 3, Policy: "sideways"},
	}
	for _, opts := range cases {
		_, err := planner.New(provider, opts).PlanGrid(z, 1)
		require.ErrorIs(t, err, planner.ErrBadOptions)
	}
}

func TestOptions_MaxFrameCount(t *testing.T) {
	opts := planner.DefaultOptions()
	opts.FrameCount = planner.MaxFrameCount
	require.NoError(t, opts.Validate())

	opts.FrameCount++
	require.ErrorIs(t, opts.Validate(), planner.ErrBadOptions)
}

func TestPlan_HugeAmplitudeStaysFinite(t *testing.T) {
	z, provider := sampled(t, paraboloid)

	for _, policy := range []planner.Policy{planner.PolicyFiltered, planner.PolicyUniform} {
		opts := planner.DefaultOptions()
		opts.Policy = policy

		for _, a := range []float64{1e306, -planner.MaxAmplitude} {
			seq, err := planner.New(provider, opts).PlanGrid(z, a)
			require.NoError(t, err, "%s %v", policy, a)
			require.NotEmpty(t, seq.Levels)
			for _, v := range seq.Levels {
				require.False(t, math.IsInf(v, 0) || math.IsNaN(v), "%s %v: level %v", policy, a, v)
			}
			assert.False(t, math.IsInf(seq.Step, 0))

			_, err = json.Marshal(seq)
			require.NoError(t, err)
		}
	}
}

//----------------------------------------------------------------------------//
// Uniform policy
//----------------------------------------------------------------------------//

func TestPlan_Uniform(t *testing.T) {
	opts := planner.DefaultOptions()
	opts.Policy = planner.PolicyUniform
	opts.FrameCount = 4

	seq, err := planner.New(nil, opts).PlanGrid(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1, 0.5, 0, -0.5, -1, -0.5, 0}, seq.Levels)
	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, seq.Accepted)

	seq, err = planner.New(nil, opts).PlanGrid(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, seq.Levels)
}

//----------------------------------------------------------------------------//
// Sequence helpers
//----------------------------------------------------------------------------//

func TestSequence_TraceBefore(t *testing.T) {
	seq := &planner.Sequence{Levels: []float64{0, 1, 2, 1, 0}}
	assert.Nil(t, seq.TraceBefore(0))
	assert.Equal(t, []float64{0}, seq.TraceBefore(1))
	assert.Equal(t, []float64{0, 1, 2}, seq.TraceBefore(3))
	assert.Equal(t, []float64{0, 1, 2}, seq.TraceBefore(4))
	assert.Equal(t, []float64{0, 1, 2}, seq.TraceBefore(99))
	assert.Equal(t, 5, seq.Len())

	var empty *planner.Sequence
	assert.Equal(t, 0, empty.Len())
}
