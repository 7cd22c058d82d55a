package world

import "math"

// Vec2 is a position or velocity in world units.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the euclidean distance to o.
func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// WithinRadius reports whether o lies within r units of v.
func (v Vec2) WithinRadius(o Vec2, r float64) bool {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return dx*dx+dy*dy <= r*r
}

// Normalize returns the unit vector, or the zero vector for degenerate input.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// IsZero reports whether the vector is (near) zero length.
func (v Vec2) IsZero() bool {
	return v.Len() < 1e-9
}
