package model

import "math"

// Position is a point on the world plane. The engine works in world units;
// one terrain chunk is 64 units wide.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceSq avoids the sqrt for comparisons against a squared radius.
func (p Position) DistanceSq(o Position) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return dx*dx + dy*dy
}

func (p Position) DistanceTo(o Position) float64 {
	return math.Sqrt(p.DistanceSq(o))
}

// HasNaN reports whether any coordinate is NaN. Distances computed from such
// a position are meaningless, so callers must reject it before comparing.
func (p Position) HasNaN() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y)
}

// Toward returns the point at distance step from p along the line to o,
// or o itself when it is closer than step.
func (p Position) Toward(o Position, step float64) Position {
	d := p.DistanceTo(o)
	if d <= step || d == 0 {
		return o
	}
	f := step / d
	return Position{X: p.X + (o.X-p.X)*f, Y: p.Y + (o.Y-p.Y)*f}
}
