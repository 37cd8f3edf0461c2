package grid

import (
	"fmt"
	"math"
)

// Grid is a dense row-major matrix of float64 values
type Grid struct {
	Rows int
	Cols int
	Data []float64
}

// New creates a zero-filled grid
func New(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadShape, rows, cols)
	}
	return &Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}, nil
}

// FromRows builds a grid from a rectangular slice of rows
func FromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty rows", ErrBadShape)
	}
	g, err := New(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != g.Cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrBadShape, i, len(row), g.Cols)
		}
		copy(g.Data[i*g.Cols:], row)
	}
	return g, nil
}

// Fill returns a grid of the given shape with every element set to v
func Fill(rows, cols int, v float64) (*Grid, error) {
	g, err := New(rows, cols)
	if err != nil {
		return nil, err
	}
	for i := range g.Data {
		g.Data[i] = v
	}
	return g, nil
}

// At returns the element at row i, column j
func (g *Grid) At(i, j int) float64 {
	return g.Data[i*g.Cols+j]
}

// Set sets the element at row i, column j
func (g *Grid) Set(i, j int, v float64) {
	g.Data[i*g.Cols+j] = v
}

// Len returns the number of elements
func (g *Grid) Len() int {
	return len(g.Data)
}

// Shape returns rows and columns
func (g *Grid) Shape() (int, int) {
	return g.Rows, g.Cols
}

// SameShape reports whether o has the same shape as g
func (g *Grid) SameShape(o *Grid) bool {
	return g != nil && o != nil && g.Rows == o.Rows && g.Cols == o.Cols
}

// Validate checks that the backing slice matches the declared shape
func (g *Grid) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrBadShape)
	}
	if g.Rows <= 0 || g.Cols <= 0 || len(g.Data) != g.Rows*g.Cols {
		return fmt.Errorf("%w: %dx%d with %d elements", ErrBadShape, g.Rows, g.Cols, len(g.Data))
	}
	return nil
}

// Clone returns a deep copy
func (g *Grid) Clone() *Grid {
	data := make([]float64, len(g.Data))
	copy(data, g.Data)
	return &Grid{Rows: g.Rows, Cols: g.Cols, Data: data}
}

// Map applies f to every element and returns the result as a new grid
func (g *Grid) Map(f func(float64) float64) *Grid {
	out := &Grid{Rows: g.Rows, Cols: g.Cols, Data: make([]float64, len(g.Data))}
	for i, v := range g.Data {
		out.Data[i] = f(v)
	}
	return out
}

// Map2 applies f pairwise to a and b, which must share a shape
func Map2(a, b *Grid, f func(float64, float64) float64) (*Grid, error) {
	if !a.SameShape(b) {
		return nil, shapeMismatch(a, b)
	}
	out := &Grid{Rows: a.Rows, Cols: a.Cols, Data: make([]float64, len(a.Data))}
	for i := range a.Data {
		out.Data[i] = f(a.Data[i], b.Data[i])
	}
	return out, nil
}

// FiniteRange returns the smallest and largest finite elements. ok is false
// when the grid holds no finite value.
func (g *Grid) FiniteRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range g.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ok = true
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// CountFinite returns the number of finite elements
func (g *Grid) CountFinite() int {
	n := 0
	for _, v := range g.Data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			n++
		}
	}
	return n
}

func shapeMismatch(a, b *Grid) error {
	ar, ac, br, bc := -1, -1, -1, -1
	if a != nil {
		ar, ac = a.Rows, a.Cols
	}
	if b != nil {
		br, bc = b.Rows, b.Cols
	}
	return fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, ar, ac, br, bc)
}
