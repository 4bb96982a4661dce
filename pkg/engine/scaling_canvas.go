package engine

import "github.com/go-drift/clockface/pkg/graphics"

// ScalingCanvas forwards drawing to an inner canvas with every coordinate,
// radius and stroke width multiplied by a uniform factor. It lets a display
// list recorded at one size be replayed onto a larger or smaller surface.
type ScalingCanvas struct {
	inner graphics.Canvas
	scale float64
}

// NewScalingCanvas wraps inner so that drawing at logical size
// inner.Size()/scale fills it.
func NewScalingCanvas(inner graphics.Canvas, scale float64) *ScalingCanvas {
	if scale <= 0 {
		scale = 1
	}
	return &ScalingCanvas{inner: inner, scale: scale}
}

func (c *ScalingCanvas) Clear(color graphics.Color) { c.inner.Clear(color) }

func (c *ScalingCanvas) DrawCircle(center graphics.Offset, radius float64, paint graphics.Paint) {
	c.inner.DrawCircle(c.point(center), radius*c.scale, c.paint(paint))
}

func (c *ScalingCanvas) DrawLine(start, end graphics.Offset, paint graphics.Paint) {
	c.inner.DrawLine(c.point(start), c.point(end), c.paint(paint))
}

// Size returns the logical size.
func (c *ScalingCanvas) Size() graphics.Size {
	s := c.inner.Size()
	return graphics.Size{Width: s.Width / c.scale, Height: s.Height / c.scale}
}

func (c *ScalingCanvas) point(p graphics.Offset) graphics.Offset {
	return graphics.Offset{X: p.X * c.scale, Y: p.Y * c.scale}
}

func (c *ScalingCanvas) paint(p graphics.Paint) graphics.Paint {
	p.StrokeWidth *= c.scale
	return p
}
