package track

import (
	"gonum.org/v1/gonum/stat"

	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/radar"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

// tentativeSwathPerSlot sizes the beam around a tentative average: each
// missing sample in the window widens it by this many metres.
const tentativeSwathPerSlot = 100.0

// Tentative accumulates positions of a low-confidence contact and averages
// them until there are enough to trust.
type Tentative struct {
	Class   capability.Class
	Average vecmath.Vec

	window int
	xs, ys []float64
}

// NewTentative returns an empty accumulator holding up to window positions.
func NewTentative(window int) *Tentative {
	if window < 1 {
		window = 1
	}
	return &Tentative{Class: capability.Unknown, window: window}
}

// Add records one observation and recomputes the average. The oldest
// position is dropped once the window is full.
func (tt *Tentative) Add(pos vecmath.Vec, class capability.Class) {
	tt.Class = class
	tt.xs = append(tt.xs, pos.X)
	tt.ys = append(tt.ys, pos.Y)
	if len(tt.xs) > tt.window {
		tt.xs = tt.xs[1:]
		tt.ys = tt.ys[1:]
	}
	tt.Average = vecmath.Vec{X: stat.Mean(tt.xs, nil), Y: stat.Mean(tt.ys, nil)}
}

// Len returns the number of positions currently averaged.
func (tt *Tentative) Len() int { return len(tt.xs) }

// Ready reports whether the window is full.
func (tt *Tentative) Ready() bool { return len(tt.xs) >= tt.window }

// Swath is the linear extent the beam should cover around the average; it
// shrinks as samples accumulate.
func (tt *Tentative) Swath() float64 {
	return tentativeSwathPerSlot * float64(tt.window+1-len(tt.xs))
}

// Aim centres a beam on the average position, sized by Swath in both angle
// and range.
func (tt *Tentative) Aim(own vecmath.Vec) radar.Aim {
	rng := vecmath.Distance(own, tt.Average)
	swath := tt.Swath()
	near := rng - swath
	if near < 0 {
		near = 0
	}
	return radar.Aim{
		Heading:  vecmath.AngleTo(own, tt.Average),
		Width:    vecmath.AngleAtDistance(rng, swath),
		MinRange: near,
		MaxRange: rng + swath,
	}
}

// Reset discards all samples.
func (tt *Tentative) Reset() {
	tt.xs, tt.ys = tt.xs[:0], tt.ys[:0]
	tt.Average = vecmath.Vec{}
	tt.Class = capability.Unknown
}
