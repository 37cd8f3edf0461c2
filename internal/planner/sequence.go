package planner

import (
	"math"
	"sort"
)

// Sequence is a planned animation cycle
type Sequence struct {
	Amplitude float64   `json:"amplitude"`
	Step      float64   `json:"step"`
	Policy    Policy    `json:"policy"`
	Digits    int       `json:"digits"`
	Levels    []float64 `json:"levels"`   // the cycle, frame by frame
	Accepted  []float64 `json:"accepted"` // sorted distinct levels
}

// Len returns the number of frames
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Levels)
}

// TraceBefore returns the sorted distinct levels visited strictly before
// frame k
func (s *Sequence) TraceBefore(k int) []float64 {
	if s == nil || k <= 0 {
		return nil
	}
	if k > len(s.Levels) {
		k = len(s.Levels)
	}
	return sortedUnique(s.Levels[:k])
}

// Round rounds v to the given number of decimal digits. Negative zero is
// normalised to zero. Values too large to scale carry no fractional digits
// and are returned as is.
func Round(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	if math.IsInf(v*scale, 0) {
		return v
	}
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}

func sortedUnique(levels []float64) []float64 {
	out := append([]float64(nil), levels...)
	sort.Float64s(out)
	n := 0
	for i, v := range out {
		if i > 0 && v == out[n-1] {
			continue
		}
		out[n] = v
		n++
	}
	return out[:n]
}

// cycle returns v followed by v reversed without its first element
func cycle(v []float64) []float64 {
	out := make([]float64, 0, 2*len(v))
	out = append(out, v...)
	for i := len(v) - 2; i >= 0; i-- {
		out = append(out, v[i])
	}
	return out
}
