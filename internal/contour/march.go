package contour

import (
	"math"

	"github.com/aescanero/dago-levelset/internal/grid"
)

// MarchingSquares is a Provider that maps grid indices to world coordinates
// through the bounds of a Sampling
type MarchingSquares struct {
	bounds grid.Bounds
}

// NewMarchingSquares creates a provider for grids sampled with s
func NewMarchingSquares(s grid.Sampling) *MarchingSquares {
	return &MarchingSquares{bounds: s.Bounds}
}

var _ Provider = (*MarchingSquares)(nil)

// Exists reports whether any fully finite cell straddles level
func (m *MarchingSquares) Exists(values *grid.Grid, level float64) bool {
	if !usable(values) {
		return false
	}
	for i := 0; i < values.Rows-1; i++ {
		for j := 0; j < values.Cols-1; j++ {
			if _, ok := classify(values, i, j, level); ok {
				return true
			}
		}
	}
	return false
}

// Geometry returns the polylines of the level set
func (m *MarchingSquares) Geometry(values *grid.Grid, level float64) []Polyline {
	if !usable(values) {
		return nil
	}
	t := &tracer{
		values: values,
		level:  level,
		points: make(map[int]Point),
		adj:    make(map[int][]int),
		xStep:  (m.bounds.XMax - m.bounds.XMin) / float64(values.Cols-1),
		yStep:  (m.bounds.YMax - m.bounds.YMin) / float64(values.Rows-1),
		bounds: m.bounds,
	}
	for i := 0; i < values.Rows-1; i++ {
		for j := 0; j < values.Cols-1; j++ {
			t.cell(i, j)
		}
	}
	return t.join()
}

func usable(values *grid.Grid) bool {
	return values != nil && values.Rows >= 2 && values.Cols >= 2 && len(values.Data) == values.Rows*values.Cols
}

// classify returns the corner mask of cell (i, j): bit 0 bottom-left, bit 1
// bottom-right, bit 2 top-right, bit 3 top-left, set when the corner is above
// level. ok is false when the cell has a non-finite corner or no crossing.
func classify(values *grid.Grid, i, j int, level float64) (int, bool) {
	corners := [4]float64{
		values.At(i, j),
		values.At(i, j+1),
		values.At(i+1, j+1),
		values.At(i+1, j),
	}
	mask := 0
	for k, v := range corners {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		if v > level {
			mask |= 1 << k
		}
	}
	return mask, mask != 0 && mask != 15
}

// segment joins two crossed edges
type segment struct {
	a, b int
}

type tracer struct {
	values *grid.Grid
	level  float64
	bounds grid.Bounds
	xStep  float64
	yStep  float64

	segments []segment
	points   map[int]Point // edge id -> crossing point
	adj      map[int][]int // edge id -> segment indices
}

// Edge ids: the horizontal edge leaving node (i, j) to the right is
// 2*(i*cols+j), the vertical edge leaving it upwards is 2*(i*cols+j)+1.
func (t *tracer) hEdge(i, j int) int { return 2 * (i*t.values.Cols + j) }
func (t *tracer) vEdge(i, j int) int { return 2*(i*t.values.Cols+j) + 1 }

func (t *tracer) cell(i, j int) {
	mask, ok := classify(t.values, i, j, t.level)
	if !ok {
		return
	}

	bottom, right := t.hEdge(i, j), t.vEdge(i, j+1)
	top, left := t.hEdge(i+1, j), t.vEdge(i, j)

	bl := mask&1 != 0
	br := mask&2 != 0
	tr := mask&4 != 0
	tl := mask&8 != 0

	var crossed []int
	if bl != br {
		crossed = append(crossed, bottom)
	}
	if br != tr {
		crossed = append(crossed, right)
	}
	if tr != tl {
		crossed = append(crossed, top)
	}
	if tl != bl {
		crossed = append(crossed, left)
	}

	for _, e := range crossed {
		t.crossing(e)
	}

	if len(crossed) == 2 {
		t.add(crossed[0], crossed[1])
		return
	}

	// saddle: diagonal corners agree, the cell centre decides which pair is
	// connected through the middle
	centre := (t.values.At(i, j) + t.values.At(i, j+1) + t.values.At(i+1, j+1) + t.values.At(i+1, j)) / 4
	if (centre > t.level) == bl {
		// bl and tr are joined, cut off br and tl
		t.add(bottom, right)
		t.add(top, left)
	} else {
		t.add(left, bottom)
		t.add(right, top)
	}
}

// crossing records the interpolated crossing on edge e. Each
// edge is always interpolated from its lower-index node, so neighbouring
// cells agree on the point exactly.
func (t *tracer) crossing(e int) {
	if _, ok := t.points[e]; ok {
		return
	}
	node := e / 2
	ni, nj := node/t.values.Cols, node%t.values.Cols
	v0 := t.values.At(ni, nj)

	var v1, fi, fj float64
	if e%2 == 0 {
		v1 = t.values.At(ni, nj+1)
		fi, fj = float64(ni), float64(nj)+frac(v0, v1, t.level)
	} else {
		v1 = t.values.At(ni+1, nj)
		fi, fj = float64(ni)+frac(v0, v1, t.level), float64(nj)
	}
	t.points[e] = Point{
		X: t.bounds.XMin + fj*t.xStep,
		Y: t.bounds.YMin + fi*t.yStep,
	}
}

func frac(v0, v1, level float64) float64 {
	if v1 == v0 {
		return 0.5
	}
	return (level - v0) / (v1 - v0)
}

func (t *tracer) add(a, b int) {
	idx := len(t.segments)
	t.segments = append(t.segments, segment{a: a, b: b})
	t.adj[a] = append(t.adj[a], idx)
	t.adj[b] = append(t.adj[b], idx)
}

// join chains segments that share an edge into polylines
func (t *tracer) join() []Polyline {
	visited := make([]bool, len(t.segments))
	var lines []Polyline

	extend := func(chain []int) []int {
		for {
			tail := chain[len(chain)-1]
			next := -1
			for _, k := range t.adj[tail] {
				if !visited[k] {
					next = k
					break
				}
			}
			if next < 0 {
				return chain
			}
			visited[next] = true
			other := t.segments[next].a
			if other == tail {
				other = t.segments[next].b
			}
			chain = append(chain, other)
		}
	}

	for s, seg := range t.segments {
		if visited[s] {
			continue
		}
		visited[s] = true
		chain := extend([]int{seg.a, seg.b})
		for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
			chain[l], chain[r] = chain[r], chain[l]
		}
		chain = extend(chain)

		line := make(Polyline, len(chain))
		for k, e := range chain {
			line[k] = t.points[e]
		}
		lines = append(lines, line)
	}
	return lines
}
