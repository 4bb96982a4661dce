package graphics

import (
	"image"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// RasterCanvas paints into an in-memory RGBA image using anti-aliased
// vector rasterization.
type RasterCanvas struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

// NewRasterCanvas creates a transparent canvas of the given pixel size.
func NewRasterCanvas(width, height int) *RasterCanvas {
	return &RasterCanvas{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		z:   vector.NewRasterizer(width, height),
	}
}

// Image returns the backing image.
func (c *RasterCanvas) Image() *image.RGBA {
	return c.img
}

// Size returns the canvas dimensions.
func (c *RasterCanvas) Size() Size {
	b := c.img.Bounds()
	return Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Clear fills the entire canvas with the given color.
func (c *RasterCanvas) Clear(color Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(color.NRGBA()), image.Point{}, draw.Src)
}

// DrawCircle draws a filled disk, or a ring of paint.StrokeWidth when the
// paint style is stroke.
func (c *RasterCanvas) DrawCircle(center Offset, radius float64, paint Paint) {
	if radius <= 0 {
		return
	}
	c.begin()
	if paint.Style == PaintStyleStroke {
		hw := paint.StrokeWidth / 2
		c.circle(center, radius+hw, 1)
		if inner := radius - hw; inner > 0 {
			// Opposite winding punches the hole.
			c.circle(center, inner, -1)
		}
	} else {
		c.circle(center, radius, 1)
	}
	c.fill(paint.Color)
}

// DrawLine strokes a segment of paint.StrokeWidth with the paint's cap.
func (c *RasterCanvas) DrawLine(start, end Offset, paint Paint) {
	hw := paint.StrokeWidth / 2
	if hw <= 0 {
		return
	}
	dx, dy := end.X-start.X, end.Y-start.Y
	length := math.Hypot(dx, dy)

	c.begin()
	if length < 1e-9 {
		if paint.StrokeCap != CapRound {
			return
		}
		c.circle(start, hw, 1)
		c.fill(paint.Color)
		return
	}

	nx, ny := -dy/length*hw, dx/length*hw
	phi := math.Atan2(dy, dx)

	c.moveTo(start.X+nx, start.Y+ny)
	c.lineTo(end.X+nx, end.Y+ny)
	if paint.StrokeCap == CapRound {
		c.arc(end, hw, phi+math.Pi/2, -math.Pi)
	} else {
		c.lineTo(end.X-nx, end.Y-ny)
	}
	c.lineTo(start.X-nx, start.Y-ny)
	if paint.StrokeCap == CapRound {
		c.arc(start, hw, phi-math.Pi/2, -math.Pi)
	}
	c.z.ClosePath()
	c.fill(paint.Color)
}

// EncodePNG writes the canvas as a PNG image.
func (c *RasterCanvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

// Scaled returns a resampled copy of the canvas at the given pixel size.
// Rendering at a multiple of the target size and scaling down gives
// smoother edges on thin strokes.
func (c *RasterCanvas) Scaled(width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), c.img, c.img.Bounds(), draw.Src, nil)
	return dst
}

func (c *RasterCanvas) begin() {
	b := c.img.Bounds()
	c.z.Reset(b.Dx(), b.Dy())
}

func (c *RasterCanvas) fill(color Color) {
	c.z.DrawOp = draw.Over
	c.z.Draw(c.img, c.img.Bounds(), image.NewUniform(color.NRGBA()), image.Point{})
}

func (c *RasterCanvas) moveTo(x, y float64) {
	c.z.MoveTo(float32(x), float32(y))
}

func (c *RasterCanvas) lineTo(x, y float64) {
	c.z.LineTo(float32(x), float32(y))
}

// circle adds a closed circle; direction is +1 or -1 for the winding.
func (c *RasterCanvas) circle(center Offset, radius float64, direction float64) {
	c.moveTo(center.X+radius, center.Y)
	c.arc(center, radius, 0, direction*2*math.Pi)
	c.z.ClosePath()
}

// arc appends an arc around center starting at angle start (radians) and
// sweeping by sweep. The current point must already be the arc's start.
// Each segment of at most 90 degrees is approximated by a cubic bezier.
func (c *RasterCanvas) arc(center Offset, radius, start, sweep float64) {
	const maxSegment = math.Pi / 2
	remaining := sweep
	current := start

	for math.Abs(remaining) > 1e-6 {
		segment := remaining
		if math.Abs(segment) > maxSegment {
			segment = math.Copysign(maxSegment, segment)
		}
		k := (4.0 / 3.0) * math.Tan(segment/4)
		end := current + segment

		x0 := center.X + radius*math.Cos(current)
		y0 := center.Y + radius*math.Sin(current)
		x3 := center.X + radius*math.Cos(end)
		y3 := center.Y + radius*math.Sin(end)

		x1 := x0 - k*radius*math.Sin(current)
		y1 := y0 + k*radius*math.Cos(current)
		x2 := x3 + k*radius*math.Sin(end)
		y2 := y3 - k*radius*math.Cos(end)

		c.z.CubeTo(float32(x1), float32(y1), float32(x2), float32(y2), float32(x3), float32(y3))

		current = end
		remaining -= segment
	}
}
