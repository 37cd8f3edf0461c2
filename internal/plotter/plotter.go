package plotter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aescanero/dago-levelset/internal/animation"
	"github.com/aescanero/dago-levelset/internal/contour"
	"github.com/aescanero/dago-levelset/internal/eval/cel"
	"github.com/aescanero/dago-levelset/internal/eval/expr"
	"github.com/aescanero/dago-levelset/internal/eval/template"
	"github.com/aescanero/dago-levelset/internal/grid"
	"github.com/aescanero/dago-levelset/internal/planner"
	"github.com/aescanero/dago-levelset/internal/store"
)

// Mode represents the plotting operation
type Mode string

const (
	// ModeDraw draws a single level curve
	ModeDraw Mode = "draw"

	// ModeAnimate plans and computes an animated level sweep
	ModeAnimate Mode = "animate"

	// ModeValidate only compiles the expression
	ModeValidate Mode = "validate"
)

// Request represents a plotting request
type Request struct {
	ID         string   `json:"id,omitempty"`
	Mode       Mode     `json:"mode,omitempty"`
	Expression string   `json:"expression"`
	Amplitude  *float64 `json:"amplitude,omitempty"`
	FrameCount int      `json:"frame_count,omitempty"`
	Region     string   `json:"region,omitempty"`
	LeaveTrace *bool    `json:"leave_trace,omitempty"`
	Speed      string   `json:"speed,omitempty"`
}

// FrameSummary describes one computed frame
type FrameSummary struct {
	Index    int       `json:"index"`
	Level    float64   `json:"level"`
	Absent   bool      `json:"absent,omitempty"`
	Segments int       `json:"segments"`
	Points   int       `json:"points"`
	Trace    []float64 `json:"trace,omitempty"`
	Title    string    `json:"title,omitempty"`
}

// Result represents the outcome of a request
type Result struct {
	ID         string         `json:"id"`
	Mode       Mode           `json:"mode"`
	Expression string         `json:"expression"`
	Canonical  string         `json:"canonical"`
	Symbols    []string       `json:"symbols"`
	Vars       []string       `json:"vars"`
	Levels     []float64      `json:"levels,omitempty"`
	Frames     []FrameSummary `json:"frames,omitempty"`
	Absent     bool           `json:"absent,omitempty"`
	IntervalMS int64          `json:"interval_ms,omitempty"`
	PlanCached bool           `json:"plan_cached,omitempty"`
}

// PlanStore persists planned sequences between requests
type PlanStore interface {
	Save(ctx context.Context, key string, seq *planner.Sequence) error
	Load(ctx context.Context, key string) (*planner.Sequence, error)
}

// Options configures a Plotter
type Options struct {
	Sampling       grid.Sampling
	Planner        planner.Options
	Speed          string
	LeaveTrace     bool
	RegionEnabled  bool
	DrawTitle      string
	AnimationTitle string
	CacheSize      int
}

// DefaultOptions returns the session defaults
func DefaultOptions() Options {
	return Options{
		Sampling:       grid.DefaultSampling(),
		Planner:        planner.DefaultOptions(),
		Speed:          animation.DefaultSpeed,
		LeaveTrace:     true,
		RegionEnabled:  true,
		DrawTitle:      "Level curve: N = {{fixed level}}",
		AnimationTitle: "Animation: N = {{fixed level}}",
		CacheSize:      16,
	}
}

// Plotter handles plotting requests
type Plotter struct {
	opts     Options
	sampling grid.Sampling
	x, y     *grid.Grid
	provider contour.Provider
	exprs    *expr.Evaluator
	regions  *cel.Evaluator
	titles   *template.Engine
	plans    PlanStore
	logger   *zap.Logger

	mu        sync.RWMutex
	cache     map[string]*grid.Grid
	cacheSize int
	hits      atomic.Uint64
	misses    atomic.Uint64
}

// New creates a new plotter. plans may be nil.
func New(opts Options, plans PlanStore, logger *zap.Logger) (*Plotter, error) {
	if err := opts.Sampling.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Planner.Validate(); err != nil {
		return nil, err
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1
	}

	x, y := opts.Sampling.Mesh()
	return &Plotter{
		opts:      opts,
		sampling:  opts.Sampling,
		x:         x,
		y:         y,
		provider:  contour.NewMarchingSquares(opts.Sampling),
		exprs:     expr.NewEvaluator(),
		regions:   cel.NewEvaluator(),
		titles:    template.NewEngine(),
		plans:     plans,
		logger:    logger,
		cache:     make(map[string]*grid.Grid),
		cacheSize: opts.CacheSize,
	}, nil
}

// Sampling returns the session sampling grid
func (p *Plotter) Sampling() grid.Sampling {
	return p.sampling
}

// Handle processes a request and returns its result
func (p *Plotter) Handle(ctx context.Context, req *Request) (*Result, error) {
	res, _, err := p.Run(ctx, req)
	return res, err
}

// Run processes a request and also returns the computed frames
func (p *Plotter) Run(ctx context.Context, req *Request) (*Result, []animation.Frame, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	// Detect mode if not specified
	if req.Mode == "" {
		req.Mode = p.detectMode(req)
	}

	p.logger.Info("plot request",
		zap.String("id", req.ID),
		zap.String("mode", string(req.Mode)),
		zap.String("expression", req.Expression),
	)

	var (
		res    *Result
		frames []animation.Frame
		err    error
	)

	if err = p.validateRequest(req); err == nil {
		switch req.Mode {
		case ModeValidate:
			res, err = p.validate(req)
		case ModeDraw:
			res, frames, err = p.draw(ctx, req)
		case ModeAnimate:
			res, frames, err = p.animate(ctx, req)
		}
	}

	if err != nil {
		p.logger.Error("plot failed",
			zap.String("id", req.ID),
			zap.String("mode", string(req.Mode)),
			zap.String("kind", Kind(err)),
			zap.Error(err),
		)
		return nil, nil, err
	}

	p.logger.Info("plot done",
		zap.String("id", req.ID),
		zap.String("mode", string(req.Mode)),
		zap.Int("frames", len(res.Frames)),
		zap.Bool("absent", res.Absent),
	)
	return res, frames, nil
}

// detectMode detects the mode from the request fields
func (p *Plotter) detectMode(req *Request) Mode {
	if req.FrameCount != 0 || req.LeaveTrace != nil || req.Speed != "" {
		return ModeAnimate
	}
	if req.Amplitude != nil {
		return ModeDraw
	}
	return ModeValidate
}

// validateRequest validates the request fields for its mode
func (p *Plotter) validateRequest(req *Request) error {
	if req.Expression == "" {
		return fmt.Errorf("%w: expression is required", ErrInvalidRequest)
	}

	switch req.Mode {
	case ModeValidate:
	case ModeDraw, ModeAnimate:
		if req.Amplitude == nil {
			return fmt.Errorf("%w: %s mode requires amplitude", ErrInvalidRequest, req.Mode)
		}
	default:
		return fmt.Errorf("%w: unknown mode: %s", ErrInvalidRequest, req.Mode)
	}

	if req.FrameCount < 0 || req.FrameCount > planner.MaxFrameCount {
		return fmt.Errorf("%w: frame_count must be in [0,%d]", ErrInvalidRequest, planner.MaxFrameCount)
	}
	if req.Amplitude != nil {
		if a := *req.Amplitude; math.IsNaN(a) || math.Abs(a) > planner.MaxAmplitude {
			return fmt.Errorf("%w: amplitude must be finite and at most %g in magnitude", ErrInvalidRequest, planner.MaxAmplitude)
		}
	}
	if req.Speed != "" {
		if _, ok := animation.Speeds[req.Speed]; !ok {
			return fmt.Errorf("%w: unknown speed: %s", ErrInvalidRequest, req.Speed)
		}
	}
	if req.Region != "" {
		if !p.opts.RegionEnabled {
			return fmt.Errorf("%w: regions are disabled", ErrInvalidRequest)
		}
		if err := p.regions.ValidateExpression(req.Region); err != nil {
			return fmt.Errorf("%w: region: %w", ErrInvalidRequest, err)
		}
	}
	return nil
}

func (p *Plotter) newResult(req *Request, program *expr.Program) *Result {
	return &Result{
		ID:         req.ID,
		Mode:       req.Mode,
		Expression: req.Expression,
		Canonical:  program.String(),
		Symbols:    program.Symbols(),
		Vars:       program.Vars(),
	}
}

func (p *Plotter) validate(req *Request) (*Result, error) {
	program, err := p.exprs.Compile(req.Expression)
	if err != nil {
		return nil, err
	}
	return p.newResult(req, program), nil
}

func (p *Plotter) draw(ctx context.Context, req *Request) (*Result, []animation.Frame, error) {
	program, err := p.exprs.Compile(req.Expression)
	if err != nil {
		return nil, nil, err
	}
	values, err := p.values(ctx, program, req.Region)
	if err != nil {
		return nil, nil, err
	}

	level := *req.Amplitude
	frames, err := animation.Frames(animation.Animation{
		Expression: req.Expression,
		Values:     values,
		Sequence:   &planner.Sequence{Amplitude: level, Levels: []float64{level}},
		Provider:   p.provider,
		Title:      p.opts.DrawTitle,
	}, p.titles)
	if err != nil {
		return nil, nil, err
	}

	res := p.newResult(req, program)
	res.Levels = []float64{level}
	res.Frames = summarize(frames)
	res.Absent = frames[0].Absent
	return res, frames, nil
}

func (p *Plotter) animate(ctx context.Context, req *Request) (*Result, []animation.Frame, error) {
	res, anim, err := p.prepare(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	frames, err := animation.Frames(*anim, p.titles)
	if err != nil {
		return nil, nil, err
	}
	res.Frames = summarize(frames)
	return res, frames, nil
}

// Prepare plans an animate request and returns the animation for a live
// Driver, without computing any frame.
func (p *Plotter) Prepare(ctx context.Context, req *Request) (*Result, *animation.Animation, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Mode == "" {
		req.Mode = ModeAnimate
	}
	if req.Mode != ModeAnimate {
		return nil, nil, fmt.Errorf("%w: cannot animate %s request", ErrInvalidRequest, req.Mode)
	}
	if err := p.validateRequest(req); err != nil {
		return nil, nil, err
	}
	return p.prepare(ctx, req)
}

func (p *Plotter) prepare(ctx context.Context, req *Request) (*Result, *animation.Animation, error) {
	program, err := p.exprs.Compile(req.Expression)
	if err != nil {
		return nil, nil, err
	}

	opts := p.opts.Planner
	if req.FrameCount > 0 {
		opts.FrameCount = req.FrameCount
	}
	amplitude := *req.Amplitude

	var values *grid.Grid
	source := func() (*grid.Grid, error) {
		var err error
		values, err = p.values(ctx, program, req.Region)
		return values, err
	}

	key := store.Key(store.PlanKey{
		Expression: program.String(),
		Amplitude:  amplitude,
		Options:    opts,
		Region:     req.Region,
		Sampling:   p.sampling,
	})
	seq, cached := p.loadPlan(ctx, key)
	if !cached {
		seq, err = planner.New(p.provider, opts).Plan(source, amplitude)
		if err != nil {
			return nil, nil, err
		}
		p.savePlan(ctx, key, seq)
	}
	if values == nil {
		if _, err := source(); err != nil {
			return nil, nil, err
		}
	}

	leaveTrace := p.opts.LeaveTrace
	if req.LeaveTrace != nil {
		leaveTrace = *req.LeaveTrace
	}
	speed := p.opts.Speed
	if req.Speed != "" {
		speed = req.Speed
	}
	interval := animation.SpeedInterval(speed)

	res := p.newResult(req, program)
	res.Levels = seq.Levels
	res.IntervalMS = interval.Milliseconds()
	res.PlanCached = cached

	return res, &animation.Animation{
		Expression: req.Expression,
		Values:     values,
		Sequence:   seq,
		Provider:   p.provider,
		Interval:   interval,
		LeaveTrace: leaveTrace,
		Title:      p.opts.AnimationTitle,
	}, nil
}

func (p *Plotter) loadPlan(ctx context.Context, key string) (*planner.Sequence, bool) {
	if p.plans == nil {
		return nil, false
	}
	seq, err := p.plans.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrPlanNotFound) {
			p.logger.Warn("failed to load plan", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return seq, seq.Len() > 0
}

func (p *Plotter) savePlan(ctx context.Context, key string, seq *planner.Sequence) {
	if p.plans == nil {
		return
	}
	if err := p.plans.Save(ctx, key, seq); err != nil {
		p.logger.Warn("failed to save plan", zap.String("key", key), zap.Error(err))
	}
}

func summarize(frames []animation.Frame) []FrameSummary {
	out := make([]FrameSummary, len(frames))
	for i, f := range frames {
		out[i] = FrameSummary{
			Index:    f.Index,
			Level:    f.Level,
			Absent:   f.Absent,
			Segments: len(f.Current),
			Points:   contour.PointCount(f.Current),
			Trace:    f.TraceLevels(),
			Title:    f.Title,
		}
	}
	return out
}
