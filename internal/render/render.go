package render

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"math"
	"time"

	"github.com/gogpu/gg"

	"github.com/aescanero/dago-levelset/internal/animation"
	"github.com/aescanero/dago-levelset/internal/contour"
	"github.com/aescanero/dago-levelset/internal/grid"
)

// DefaultSize is the default canvas edge in pixels.
const DefaultSize = 480

// gridSpacing is the distance between background grid lines, in plot units.
const gridSpacing = 2.0

var (
	// ErrBadSize is returned for a non-positive canvas size.
	ErrBadSize = errors.New("render: canvas size must be positive")

	// ErrNoFrames is returned when encoding an empty animation.
	ErrNoFrames = errors.New("render: no frames to encode")
)

var (
	background = gg.White
	gridColor  = gg.RGB(0.9, 0.9, 0.9)
	axisColor  = gg.RGB(0.4, 0.4, 0.4)
	traceColor = gg.RGBA2(0.12, 0.47, 0.71, 0.35)
	levelColor = gg.RGB(0.12, 0.47, 0.71)
	absentMark = gg.RGB(0.84, 0.15, 0.16)
)

// Renderer draws frames over a fixed sampling window
type Renderer struct {
	bounds grid.Bounds
	width  int
	height int
}

// New creates a renderer for the given window and canvas size
func New(bounds grid.Bounds, width, height int) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, width, height)
	}
	if !(bounds.XMin < bounds.XMax) || !(bounds.YMin < bounds.YMax) {
		return nil, fmt.Errorf("%w: %+v", grid.ErrBadBounds, bounds)
	}
	return &Renderer{bounds: bounds, width: width, height: height}, nil
}

// Size returns the canvas size in pixels
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

func (r *Renderer) px(p contour.Point) (float64, float64) {
	b := r.bounds
	x := (p.X - b.XMin) / (b.XMax - b.XMin) * float64(r.width)
	y := float64(r.height) - (p.Y-b.YMin)/(b.YMax-b.YMin)*float64(r.height)
	return x, y
}

// Draw rasterizes one frame
func (r *Renderer) Draw(f animation.Frame) (*image.RGBA, error) {
	dc := gg.NewContext(r.width, r.height)
	defer func() { _ = dc.Close() }()

	dc.ClearWithColor(background)

	if err := r.drawGrid(dc); err != nil {
		return nil, err
	}
	for _, layer := range f.Trace {
		if err := r.stroke(dc, layer.Lines, traceColor, 1); err != nil {
			return nil, err
		}
	}
	if err := r.stroke(dc, f.Current, levelColor, 2); err != nil {
		return nil, err
	}
	if f.Absent {
		if err := r.cross(dc); err != nil {
			return nil, err
		}
	}

	if err := dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("failed to flush canvas: %w", err)
	}
	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		rgba := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
		draw.Draw(rgba, rgba.Bounds(), dc.Image(), image.Point{}, draw.Src)
		img = rgba
	}
	return img, nil
}

func (r *Renderer) drawGrid(dc *gg.Context) error {
	b := r.bounds
	dc.SetColor(gridColor.Color())
	dc.SetLineWidth(1)
	for v := math.Ceil(b.XMin/gridSpacing) * gridSpacing; v <= b.XMax; v += gridSpacing {
		x0, y0 := r.px(contour.Point{X: v, Y: b.YMin})
		x1, y1 := r.px(contour.Point{X: v, Y: b.YMax})
		dc.DrawLine(x0, y0, x1, y1)
	}
	for v := math.Ceil(b.YMin/gridSpacing) * gridSpacing; v <= b.YMax; v += gridSpacing {
		x0, y0 := r.px(contour.Point{X: b.XMin, Y: v})
		x1, y1 := r.px(contour.Point{X: b.XMax, Y: v})
		dc.DrawLine(x0, y0, x1, y1)
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("failed to stroke grid: %w", err)
	}

	dc.SetColor(axisColor.Color())
	if b.XMin <= 0 && 0 <= b.XMax {
		x0, y0 := r.px(contour.Point{X: 0, Y: b.YMin})
		x1, y1 := r.px(contour.Point{X: 0, Y: b.YMax})
		dc.DrawLine(x0, y0, x1, y1)
	}
	if b.YMin <= 0 && 0 <= b.YMax {
		x0, y0 := r.px(contour.Point{X: b.XMin, Y: 0})
		x1, y1 := r.px(contour.Point{X: b.XMax, Y: 0})
		dc.DrawLine(x0, y0, x1, y1)
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("failed to stroke axes: %w", err)
	}
	return nil
}

func (r *Renderer) stroke(dc *gg.Context, lines []contour.Polyline, c gg.RGBA, width float64) error {
	if len(lines) == 0 {
		return nil
	}
	dc.SetColor(c.Color())
	dc.SetLineWidth(width)
	for _, line := range lines {
		if len(line) < 2 {
			continue
		}
		dc.MoveTo(r.px(line[0]))
		for _, p := range line[1:] {
			dc.LineTo(r.px(p))
		}
		if line.Closed() {
			dc.ClosePath()
		}
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("failed to stroke contour: %w", err)
	}
	return nil
}

func (r *Renderer) cross(dc *gg.Context) error {
	w, h := float64(r.width), float64(r.height)
	m := math.Min(w, h) / 8
	dc.SetColor(absentMark.Color())
	dc.SetLineWidth(3)
	dc.DrawLine(w/2-m, h/2-m, w/2+m, h/2+m)
	dc.DrawLine(w/2-m, h/2+m, w/2+m, h/2-m)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("failed to stroke marker: %w", err)
	}
	return nil
}

// EncodePNG writes one frame as PNG
func (r *Renderer) EncodePNG(w io.Writer, f animation.Frame) error {
	img, err := r.Draw(f)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// EncodeGIF writes frames as a looping animated GIF. Each frame is shown for
// interval, rounded to the GIF's 10ms resolution.
func (r *Renderer) EncodeGIF(w io.Writer, frames []animation.Frame, interval time.Duration) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	delay := int((interval + 5*time.Millisecond) / (10 * time.Millisecond))
	if delay < 1 {
		delay = 1
	}

	anim := &gif.GIF{LoopCount: 0}
	for _, f := range frames {
		img, err := r.Draw(f)
		if err != nil {
			return err
		}
		p := image.NewPaletted(img.Bounds(), palette.Plan9)
		draw.Draw(p, p.Bounds(), img, image.Point{}, draw.Src)
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delay)
	}
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return nil
}
