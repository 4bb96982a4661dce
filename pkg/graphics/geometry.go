package graphics

import "math"

// Offset represents a 2D point or vector in pixel coordinates.
type Offset struct {
	X float64
	Y float64
}

// Add returns the sum of two offsets.
func (o Offset) Add(other Offset) Offset {
	return Offset{X: o.X + other.X, Y: o.Y + other.Y}
}

// Polar returns the point at radius from o in the direction of degrees,
// measured clockwise from the positive X axis (screen coordinates).
func (o Offset) Polar(radius, degrees float64) Offset {
	rad := degrees * math.Pi / 180
	return Offset{
		X: o.X + radius*math.Cos(rad),
		Y: o.Y + radius*math.Sin(rad),
	}
}

// Size represents width and height dimensions in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Center returns the midpoint of a box of this size anchored at the origin.
func (s Size) Center() Offset {
	return Offset{X: s.Width / 2, Y: s.Height / 2}
}

// Square returns a square size with the given side.
func Square(side float64) Size {
	return Size{Width: side, Height: side}
}
