package animation

import (
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/dago-levelset/internal/contour"
	"github.com/aescanero/dago-levelset/internal/eval/template"
	"github.com/aescanero/dago-levelset/internal/grid"
	"github.com/aescanero/dago-levelset/internal/planner"
)

var (
	// ErrNoSequence is returned when an animation has no levels to play.
	ErrNoSequence = errors.New("animation: empty level sequence")

	// ErrNoValues is returned when an animation has no value grid.
	ErrNoValues = errors.New("animation: nil value grid")

	// ErrNoProvider is returned when an animation has no contour provider.
	ErrNoProvider = errors.New("animation: nil contour provider")

	// ErrBadInterval is returned for a non-positive frame interval.
	ErrBadInterval = errors.New("animation: frame interval must be positive")
)

// Animation describes one playback of a level sequence.
type Animation struct {
	Expression string
	Values     *grid.Grid
	Sequence   *planner.Sequence
	Provider   contour.Provider
	Interval   time.Duration
	LeaveTrace bool
	Repeat     bool

	// Title is a Handlebars template rendered per frame; empty means none.
	Title string
}

func (a *Animation) validate(paced bool) error {
	switch {
	case a.Sequence.Len() == 0:
		return ErrNoSequence
	case a.Values == nil:
		return ErrNoValues
	case a.Provider == nil:
		return ErrNoProvider
	case paced && a.Interval <= 0:
		return fmt.Errorf("%w: %s", ErrBadInterval, a.Interval)
	}
	return nil
}

// Layer is the geometry of one level.
type Layer struct {
	Level float64
	Lines []contour.Polyline
}

// Frame is one rendered step of an animation.
type Frame struct {
	Index   int
	Total   int
	Level   float64
	Current []contour.Polyline
	Trace   []Layer // previously visited levels, ascending
	Absent  bool    // no contour at Level
	Title   string
}

// TraceLevels returns the levels of the trace layers.
func (f Frame) TraceLevels() []float64 {
	out := make([]float64, len(f.Trace))
	for i, l := range f.Trace {
		out[i] = l.Level
	}
	return out
}

// framer builds frames for one animation, memoizing geometry per level.
type framer struct {
	anim     Animation
	titles   *template.Engine
	geometry map[float64][]contour.Polyline
}

func newFramer(anim Animation, titles *template.Engine) *framer {
	return &framer{
		anim:     anim,
		titles:   titles,
		geometry: make(map[float64][]contour.Polyline),
	}
}

func (f *framer) lines(level float64) []contour.Polyline {
	if g, ok := f.geometry[level]; ok {
		return g
	}
	g := f.anim.Provider.Geometry(f.anim.Values, level)
	f.geometry[level] = g
	return g
}

func (f *framer) frame(k int) (Frame, error) {
	seq := f.anim.Sequence
	level := seq.Levels[k]
	fr := Frame{
		Index:   k,
		Total:   seq.Len(),
		Level:   level,
		Current: f.lines(level),
	}
	fr.Absent = len(fr.Current) == 0

	if f.anim.LeaveTrace {
		for _, l := range seq.TraceBefore(k) {
			fr.Trace = append(fr.Trace, Layer{Level: l, Lines: f.lines(l)})
		}
	}

	if f.anim.Title != "" && f.titles != nil {
		title, err := f.titles.RenderTitle(f.anim.Title, template.FrameData{
			Expression: f.anim.Expression,
			Level:      level,
			Index:      k,
			Frames:     fr.Total,
			Absent:     fr.Absent,
		})
		if err != nil {
			return Frame{}, fmt.Errorf("failed to render title: %w", err)
		}
		fr.Title = title
	}
	return fr, nil
}

// Frames computes every frame of anim without pacing.
func Frames(anim Animation, titles *template.Engine) ([]Frame, error) {
	if err := anim.validate(false); err != nil {
		return nil, err
	}
	f := newFramer(anim, titles)
	out := make([]Frame, 0, anim.Sequence.Len())
	for k := 0; k < anim.Sequence.Len(); k++ {
		fr, err := f.frame(k)
		if err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, nil
}
