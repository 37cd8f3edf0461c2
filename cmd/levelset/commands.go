package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aescanero/dago-levelset/internal/animation"
	"github.com/aescanero/dago-levelset/internal/plotter"
	"github.com/aescanero/dago-levelset/internal/render"
)

// -----------------------------------------------------------------------------
// draw
// -----------------------------------------------------------------------------

func cmdDraw(args []string) int {
	fs := newFlagSet("draw")
	expression := fs.String("expr", "", "expression in x and y")
	var level levelFlag
	fs.Var(&level, "n", "level N of the curve f(x, y) = N")
	region := fs.String("region", "", "CEL condition restricting the plot")
	size := fs.Int("size", render.DefaultSize, "image edge in pixels")
	out := fs.String("out", "", "write the curve as PNG to this file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	s, err := newSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	defer s.close()

	ctx, cancel := signalContext()
	defer cancel()

	res, frames, err := s.plotter.Run(ctx, &plotter.Request{
		Mode:       plotter.ModeDraw,
		Expression: *expression,
		Amplitude:  level.ptr(),
		Region:     *region,
	})
	if err != nil {
		return fail(err)
	}

	if *out != "" {
		r, err := newRenderer(s, *size)
		if err != nil {
			return fail(err)
		}
		if err := writeFile(*out, func(f *os.File) error { return r.EncodePNG(f, frames[0]) }); err != nil {
			return fail(err)
		}
	}
	printJSON(res)
	return 0
}

// -----------------------------------------------------------------------------
// animate
// -----------------------------------------------------------------------------

func cmdAnimate(args []string) int {
	fs := newFlagSet("animate")
	expression := fs.String("expr", "", "expression in x and y")
	var amplitude levelFlag
	fs.Var(&amplitude, "n", "amplitude N; levels sweep [-|N|, |N|]")
	frameCount := fs.Int("frames", 0, "frame count used to derive the level step (default FRAME_COUNT)")
	trace := fs.Bool("trace", true, "keep previously visited levels on screen")
	speed := fs.String("speed", "", "x0.5, x1, x1.5 or x2 (default ANIMATION_SPEED)")
	region := fs.String("region", "", "CEL condition restricting the plot")
	size := fs.Int("size", render.DefaultSize, "image edge in pixels")
	out := fs.String("out", "", "write the animation as GIF to this file")
	play := fs.Bool("play", false, "print frames live at the animation speed")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// LEAVE_TRACE applies unless -trace is given explicitly
	var leaveTrace *bool
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "trace" {
			leaveTrace = trace
		}
	})

	s, err := newSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	defer s.close()

	ctx, cancel := signalContext()
	defer cancel()

	req := &plotter.Request{
		Mode:       plotter.ModeAnimate,
		Expression: *expression,
		Amplitude:  amplitude.ptr(),
		FrameCount: *frameCount,
		Region:     *region,
		LeaveTrace: leaveTrace,
		Speed:      *speed,
	}

	if *play {
		res, anim, err := s.plotter.Prepare(ctx, req)
		if err != nil {
			return fail(err)
		}
		driver := animation.NewDriver(s.logger)
		if err := driver.Start(ctx, *anim, printFrame); err != nil {
			return fail(err)
		}
		_ = driver.Wait(ctx)
		driver.Stop()
		fmt.Printf("%d frames at %dms\n", len(res.Levels), res.IntervalMS)
		return 0
	}

	res, frames, err := s.plotter.Run(ctx, req)
	if err != nil {
		return fail(err)
	}

	if *out != "" {
		r, err := newRenderer(s, *size)
		if err != nil {
			return fail(err)
		}
		interval := time.Duration(res.IntervalMS) * time.Millisecond
		if err := writeFile(*out, func(f *os.File) error { return r.EncodeGIF(f, frames, interval) }); err != nil {
			return fail(err)
		}
	}
	printJSON(res)
	return 0
}

func printFrame(f animation.Frame) {
	status := fmt.Sprintf("%d segments", len(f.Current))
	if f.Absent {
		status = "no curve"
	}
	title := f.Title
	if title == "" {
		title = fmt.Sprintf("N = %.2f", f.Level)
	}
	fmt.Printf("[%2d/%d] %-28s %-12s trace=%v\n", f.Index+1, f.Total, title, status, f.TraceLevels())
}

// -----------------------------------------------------------------------------
// validate
// -----------------------------------------------------------------------------

func cmdValidate(args []string) int {
	fs := newFlagSet("validate")
	expression := fs.String("expr", "", "expression in x and y")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *expression == "" && fs.NArg() > 0 {
		*expression = fs.Arg(0)
	}

	s, err := newSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	defer s.close()

	res, err := s.plotter.Handle(context.Background(), &plotter.Request{Mode: plotter.ModeValidate, Expression: *expression})
	if err != nil {
		return fail(err)
	}
	printJSON(res)
	return 0
}
