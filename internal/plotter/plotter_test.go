package plotter_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aescanero/dago-levelset/internal/eval/expr"
	"github.com/aescanero/dago-levelset/internal/grid"
	"github.com/aescanero/dago-levelset/internal/planner"
	"github.com/aescanero/dago-levelset/internal/plotter"
	"github.com/aescanero/dago-levelset/internal/store"
)

func f64(v float64) *float64 { return &v }
func yes() *bool             { v := true; return &v }

func newPlotter(t *testing.T, plans plotter.PlanStore) *plotter.Plotter {
	t.Helper()
	opts := plotter.DefaultOptions()
	opts.Sampling = grid.Sampling{Bounds: opts.Sampling.Bounds, Resolution: 101}
	p, err := plotter.New(opts, plans, zap.NewNop())
	require.NoError(t, err)
	return p
}

//--------------------------------------------------------------------------//
// draw
//--------------------------------------------------------------------------//

func TestHandle_DrawCircle(t *testing.T) {
	p := newPlotter(t, nil)
	res, err := p.Handle(context.Background(), &plotter.Request{
		Mode:       plotter.ModeDraw,
		Expression: "x^2 + y^2",
		Amplitude:  f64(4),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.False(t, res.Absent)
	require.Len(t, res.Frames, 1)
	assert.Equal(t, 1, res.Frames[0].Segments)
	assert.Equal(t, "Level curve: N = 4.00", res.Frames[0].Title)
	assert.Equal(t, []string{"x", "y"}, res.Vars)
}

func TestHandle_DrawAbsent(t *testing.T) {
	p := newPlotter(t, nil)
	res, err := p.Handle(context.Background(), &plotter.Request{
		Expression: "x^2 + y^2",
		Amplitude:  f64(-1),
	})
	require.NoError(t, err)
	assert.Equal(t, plotter.ModeDraw, res.Mode)
	assert.True(t, res.Absent)
	assert.Zero(t, res.Frames[0].Segments)
}

func TestHandle_Errors(t *testing.T) {
	p := newPlotter(t, nil)
	cases := []struct {
		name string
		req  plotter.Request
		kind string
	}{
		{"Syntax", plotter.Request{Expression: "x** + y", Amplitude: f64(1)}, expr.KindSyntax},
		{"Forbidden", plotter.Request{Expression: "__import__('os')", Amplitude: f64(1)}, expr.KindNameNotAllowed},
		{"Attribute", plotter.Request{Expression: "np.sin(x)"}, expr.KindNameNotAllowed},
		{"NoExpression", plotter.Request{Amplitude: f64(1)}, plotter.KindInvalidRequest},
		{"NoAmplitude", plotter.Request{Mode: plotter.ModeDraw, Expression: "x"}, plotter.KindInvalidRequest},
		{"UnknownMode", plotter.Request{Mode: "plot3d", Expression: "x"}, plotter.KindInvalidRequest},
		{"UnknownSpeed", plotter.Request{Expression: "x", Amplitude: f64(1), Speed: "x9"}, plotter.KindInvalidRequest},
		{"BadRegion", plotter.Request{Expression: "x", Amplitude: f64(1), Region: "x +"}, plotter.KindInvalidRequest},
		{"NegativeFrames", plotter.Request{Expression: "x", Amplitude: f64(1), FrameCount: -1}, plotter.KindInvalidRequest},
		{"TooManyFrames", plotter.Request{Expression: "x", Amplitude: f64(1), FrameCount: planner.MaxFrameCount + 1}, plotter.KindInvalidRequest},
		{"HugeFramesValidate", plotter.Request{Mode: plotter.ModeValidate, Expression: "x", FrameCount: 1 << 30}, plotter.KindInvalidRequest},
		{"AmplitudeOutOfRange", plotter.Request{Expression: "x", Amplitude: f64(math.MaxFloat64)}, plotter.KindInvalidRequest},
		{"NonBoolRegion", plotter.Request{Expression: "x", Amplitude: f64(1), Region: "x + 1.0"}, plotter.KindInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			_, err := p.Handle(context.Background(), &req)
			require.Error(t, err)
			assert.Equal(t, tc.kind, plotter.Kind(err))
		})
	}
}

func TestHandle_Validate(t *testing.T) {
	p := newPlotter(t, nil)
	res, err := p.Handle(context.Background(), &plotter.Request{Expression: "sin(x) * pi"})
	require.NoError(t, err)
	assert.Equal(t, plotter.ModeValidate, res.Mode)
	assert.Equal(t, []string{"pi", "sin"}, res.Symbols)
	assert.Equal(t, []string{"x"}, res.Vars)
	assert.Empty(t, res.Frames)
}

func TestHandle_Region(t *testing.T) {
	p := newPlotter(t, nil)
	full, err := p.Handle(context.Background(), &plotter.Request{Expression: "x^2 + y^2", Amplitude: f64(4)})
	require.NoError(t, err)
	half, err := p.Handle(context.Background(), &plotter.Request{Expression: "x^2 + y^2", Amplitude: f64(4), Region: "x > 0.0"})
	require.NoError(t, err)

	assert.False(t, half.Absent)
	assert.Less(t, half.Frames[0].Points, full.Frames[0].Points)

	gone, err := p.Handle(context.Background(), &plotter.Request{Expression: "x^2 + y^2", Amplitude: f64(4), Region: "x > 5.0"})
	require.NoError(t, err)
	assert.True(t, gone.Absent)
}

func TestHandle_RegionDisabled(t *testing.T) {
	opts := plotter.DefaultOptions()
	opts.Sampling.Resolution = 51
	opts.RegionEnabled = false
	p, err := plotter.New(opts, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = p.Handle(context.Background(), &plotter.Request{Expression: "x", Amplitude: f64(0), Region: "x > 0.0"})
	assert.True(t, errors.Is(err, plotter.ErrInvalidRequest))
}

//--------------------------------------------------------------------------//
// value grid cache
//--------------------------------------------------------------------------//

func TestHandle_ValueGridCached(t *testing.T) {
	p := newPlotter(t, nil)
	ctx := context.Background()

	_, err := p.Handle(ctx, &plotter.Request{Expression: "x^2 + y^2", Amplitude: f64(4)})
	require.NoError(t, err)
	// same program, different spelling
	_, err = p.Handle(ctx, &plotter.Request{Expression: "x**2+y**2", Amplitude: f64(1)})
	require.NoError(t, err)
	_, err = p.Handle(ctx, &plotter.Request{Expression: "x^2 + y^2", Amplitude: f64(4), FrameCount: 10})
	require.NoError(t, err)

	stats := p.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(2), stats.Hits)

	p.Invalidate()
	assert.Zero(t, p.Stats().Entries)
}

//--------------------------------------------------------------------------//
// animate
//--------------------------------------------------------------------------//

func TestHandle_Animate(t *testing.T) {
	p := newPlotter(t, nil)
	res, frames, err := p.Run(context.Background(), &plotter.Request{
		Expression: "x^2 + y^2",
		Amplitude:  f64(4),
		FrameCount: 20,
		LeaveTrace: yes(),
		Speed:      "x1.5",
	})
	require.NoError(t, err)

	assert.Equal(t, plotter.ModeAnimate, res.Mode)
	assert.Equal(t, int64(66), res.IntervalMS)
	require.Len(t, res.Frames, len(res.Levels))
	require.Len(t, frames, len(res.Levels))

	n := len(res.Levels)
	require.Equal(t, 1, n%2)
	assert.Equal(t, 0.0, res.Levels[0])
	assert.Equal(t, res.Levels[0], res.Levels[n-1])
	for k := range res.Levels {
		assert.Equal(t, res.Levels[k], res.Levels[n-1-k])
		if res.Levels[k] != 0 {
			assert.False(t, res.Frames[k].Absent, "level %g", res.Levels[k])
		}
	}
	assert.Empty(t, res.Frames[0].Trace)
	assert.NotEmpty(t, res.Frames[n-1].Trace)
}

func TestHandle_AnimatePlanStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	plans := store.NewRedisPlanStore(client, 0, zap.NewNop())

	p := newPlotter(t, plans)
	req := func() *plotter.Request {
		return &plotter.Request{Mode: plotter.ModeAnimate, Expression: "x^2 - y^2", Amplitude: f64(4)}
	}

	first, err := p.Handle(context.Background(), req())
	require.NoError(t, err)
	assert.False(t, first.PlanCached)
	assert.Len(t, mr.Keys(), 1)

	// a fresh plotter has an empty value cache but finds the plan
	q := newPlotter(t, plans)
	second, err := q.Handle(context.Background(), req())
	require.NoError(t, err)
	assert.True(t, second.PlanCached)
	assert.Equal(t, first.Levels, second.Levels)
	assert.Equal(t, first.Frames, second.Frames)
}

func TestPrepare(t *testing.T) {
	p := newPlotter(t, nil)
	res, anim, err := p.Prepare(context.Background(), &plotter.Request{Expression: "x + y", Amplitude: f64(2)})
	require.NoError(t, err)
	assert.Equal(t, plotter.ModeAnimate, res.Mode)
	assert.Equal(t, res.Levels, anim.Sequence.Levels)
	assert.NotNil(t, anim.Values)
	assert.True(t, anim.LeaveTrace)

	_, _, err = p.Prepare(context.Background(), &plotter.Request{Mode: plotter.ModeDraw, Expression: "x", Amplitude: f64(1)})
	assert.ErrorIs(t, err, plotter.ErrInvalidRequest)
}
