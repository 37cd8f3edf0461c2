package animation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aescanero/dago-levelset/internal/eval/template"
)

// Driver plays one animation at a time
type Driver struct {
	logger *zap.Logger
	titles *template.Engine

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDriver creates a new animation driver
func NewDriver(logger *zap.Logger) *Driver {
	return &Driver{
		logger: logger,
		titles: template.NewEngine(),
	}
}

// Start stops any running animation and starts anim. onFrame is called from
// the driver goroutine, once per tick, and must not call Stop or Start.
func (d *Driver) Start(ctx context.Context, anim Animation, onFrame func(Frame)) error {
	if err := anim.validate(true); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	d.cancel = cancel
	d.done = done

	d.logger.Debug("starting animation",
		zap.Int("frames", anim.Sequence.Len()),
		zap.Duration("interval", anim.Interval),
		zap.Bool("leave_trace", anim.LeaveTrace),
	)

	go d.run(runCtx, newFramer(anim, d.titles), onFrame, done)
	return nil
}

// Stop halts the running animation and waits for its goroutine to exit.
// It is a no-op when nothing is running.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Running reports whether an animation is still playing
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done == nil {
		return false
	}
	select {
	case <-d.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the running animation finishes or ctx is done
func (d *Driver) Wait(ctx context.Context) error {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Driver) stopLocked() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	<-d.done
	d.cancel = nil
	d.done = nil
	d.logger.Debug("animation stopped")
}

func (d *Driver) run(ctx context.Context, f *framer, onFrame func(Frame), done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(f.anim.Interval)
	defer ticker.Stop()

	total := f.anim.Sequence.Len()
	for k := 0; ; {
		if ctx.Err() != nil {
			return
		}
		fr, err := f.frame(k)
		if err != nil {
			d.logger.Error("failed to build frame", zap.Int("frame", k), zap.Error(err))
			return
		}
		// re-check liveness: Stop may have raced with frame construction
		if ctx.Err() != nil {
			return
		}
		onFrame(fr)

		k++
		if k == total {
			if !f.anim.Repeat {
				return
			}
			k = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
