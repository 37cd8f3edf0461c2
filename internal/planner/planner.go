package planner

import (
	"fmt"
	"math"

	"github.com/aescanero/dago-levelset/internal/contour"
	"github.com/aescanero/dago-levelset/internal/grid"
)

// Policy selects how candidate levels become frames
type Policy string

const (
	// PolicyFiltered keeps only levels with an existing contour and plays
	// them as a sorted there-and-back cycle
	PolicyFiltered Policy = "filtered"

	// PolicyUniform steps through every rounded candidate in sweep order
	PolicyUniform Policy = "uniform"
)

// Defaults
const (
	DefaultFrameCount = 20
	DefaultDigits     = 3
	maxDigits         = 12

	// MaxFrameCount bounds the sweep resolution. Candidates grows linearly
	// with it and every candidate may cost a contour search.
	MaxFrameCount = 10_000

	// MaxAmplitude keeps 2|N| and every sweep step finite
	MaxAmplitude = 1e307
)

// Options tunes the planner
type Options struct {
	FrameCount int    `json:"frame_count"`
	Digits     int    `json:"digits"`
	Policy     Policy `json:"policy"`
}

// DefaultOptions returns 20 frames, 3 decimals, filtered policy
func DefaultOptions() Options {
	return Options{
		FrameCount: DefaultFrameCount,
		Digits:     DefaultDigits,
		Policy:     PolicyFiltered,
	}
}

// Validate checks the options
func (o Options) Validate() error {
	if o.FrameCount < 0 || o.FrameCount > MaxFrameCount {
		return fmt.Errorf("%w: frame count %d not in [0,%d]", ErrBadOptions, o.FrameCount, MaxFrameCount)
	}
	if o.Digits < 0 || o.Digits > maxDigits {
		return fmt.Errorf("%w: digits %d not in [0,%d]", ErrBadOptions, o.Digits, maxDigits)
	}
	switch o.Policy {
	case PolicyFiltered, PolicyUniform:
	default:
		return fmt.Errorf("%w: unknown policy %q", ErrBadOptions, o.Policy)
	}
	return nil
}

// ValueSource yields the ValueGrid used for existence tests
type ValueSource func() (*grid.Grid, error)

// Static returns a ValueSource for an already computed grid
func Static(values *grid.Grid) ValueSource {
	return func() (*grid.Grid, error) { return values, nil }
}

// Planner plans level sequences
type Planner struct {
	provider contour.Provider
	opts     Options
}

// New creates a planner
func New(provider contour.Provider, opts Options) *Planner {
	return &Planner{provider: provider, opts: opts}
}

// Options returns the planner options
func (p *Planner) Options() Options {
	return p.opts
}

// PlanGrid plans over an already computed ValueGrid
func (p *Planner) PlanGrid(values *grid.Grid, amplitude float64) (*Sequence, error) {
	return p.Plan(Static(values), amplitude)
}

// Plan requests the ValueGrid from source once and plans the level sequence
// for amplitude. Errors from source are returned wrapped.
func (p *Planner) Plan(source ValueSource, amplitude float64) (*Sequence, error) {
	if err := p.opts.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(amplitude) || math.Abs(amplitude) > MaxAmplitude {
		return nil, fmt.Errorf("%w: %v", ErrBadAmplitude, amplitude)
	}
	if p.opts.Policy == PolicyUniform {
		return p.uniform(amplitude), nil
	}
	if p.provider == nil {
		return nil, ErrNoProvider
	}
	if source == nil {
		return nil, ErrNoValues
	}

	values, err := source()
	if err != nil {
		return nil, fmt.Errorf("failed to compute value grid: %w", err)
	}
	if values == nil {
		return nil, ErrNoValues
	}

	digits := p.opts.Digits
	accepted := make(map[float64]bool)
	rejected := make(map[float64]bool)
	var v []float64

	for _, c := range Candidates(amplitude, p.opts.FrameCount) {
		level := Round(c, digits)
		if accepted[level] || rejected[level] {
			continue
		}
		if p.provider.Exists(values, level) {
			accepted[level] = true
			v = append(v, level)
		} else {
			rejected[level] = true
		}
	}

	// zero is the canonical first and last frame even when no curve exists
	if !accepted[0] {
		v = append(v, 0)
	}
	v = sortedUnique(v)

	return &Sequence{
		Amplitude: amplitude,
		Step:      Step(amplitude, p.opts.FrameCount),
		Policy:    PolicyFiltered,
		Digits:    digits,
		Levels:    cycle(v),
		Accepted:  v,
	}, nil
}

// uniform steps through the rounded candidates in sweep order, dropping
// adjacent duplicates
func (p *Planner) uniform(amplitude float64) *Sequence {
	var levels []float64
	for _, c := range Candidates(amplitude, p.opts.FrameCount) {
		level := Round(c, p.opts.Digits)
		if len(levels) > 0 && levels[len(levels)-1] == level {
			continue
		}
		levels = append(levels, level)
	}
	return &Sequence{
		Amplitude: amplitude,
		Step:      Step(amplitude, p.opts.FrameCount),
		Policy:    PolicyUniform,
		Digits:    p.opts.Digits,
		Levels:    levels,
		Accepted:  sortedUnique(levels),
	}
}

// Step returns the sweep step for amplitude. A zero frame count falls back to
// a step of 1.
func Step(amplitude float64, frameCount int) float64 {
	if frameCount <= 0 {
		return 1
	}
	return 2 * math.Abs(amplitude) / float64(frameCount)
}

// Candidates returns the three sweeps 0 → |N|, |N| → -|N| and -|N| → 0,
// each inclusive of both ends, concatenated
func Candidates(amplitude float64, frameCount int) []float64 {
	nMax := math.Abs(amplitude)
	nMin := -nMax
	step := Step(amplitude, frameCount)

	out := sweep(nil, 0, nMax, step)
	out = sweep(out, nMax, nMin, step)
	return sweep(out, nMin, 0, step)
}

// sweep appends from, from±step, ... up to and including to
func sweep(out []float64, from, to, step float64) []float64 {
	span := math.Abs(to - from)
	if span == 0 || step <= 0 {
		return append(out, from)
	}
	n := int(math.Round(span / step))
	if n < 1 {
		n = 1
	}
	dir := 1.0
	if to < from {
		dir = -1
	}
	for k := 0; k < n; k++ {
		out = append(out, from+dir*float64(k)*step)
	}
	return append(out, to)
}
