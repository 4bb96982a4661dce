package graphics

import (
	"bytes"
	"fmt"
	"io"
)

// SVGCanvas records drawing commands as SVG elements.
type SVGCanvas struct {
	size Size
	body bytes.Buffer
}

// NewSVGCanvas creates an SVG canvas with the given viewport.
func NewSVGCanvas(size Size) *SVGCanvas {
	return &SVGCanvas{size: size}
}

// Size returns the canvas dimensions.
func (c *SVGCanvas) Size() Size {
	return c.size
}

// Clear discards everything drawn so far and fills the viewport.
func (c *SVGCanvas) Clear(color Color) {
	c.body.Reset()
	if color.Alpha() == 0 {
		return
	}
	fmt.Fprintf(&c.body, `<rect width="%s" height="%s" %s/>`+"\n",
		num(c.size.Width), num(c.size.Height), fillAttrs(color))
}

// DrawCircle appends a circle element.
func (c *SVGCanvas) DrawCircle(center Offset, radius float64, paint Paint) {
	if paint.Style == PaintStyleStroke {
		fmt.Fprintf(&c.body, `<circle cx="%s" cy="%s" r="%s" fill="none" %s/>`+"\n",
			num(center.X), num(center.Y), num(radius), strokeAttrs(paint))
		return
	}
	fmt.Fprintf(&c.body, `<circle cx="%s" cy="%s" r="%s" %s/>`+"\n",
		num(center.X), num(center.Y), num(radius), fillAttrs(paint.Color))
}

// DrawLine appends a line element.
func (c *SVGCanvas) DrawLine(start, end Offset, paint Paint) {
	fmt.Fprintf(&c.body, `<line x1="%s" y1="%s" x2="%s" y2="%s" %s/>`+"\n",
		num(start.X), num(start.Y), num(end.X), num(end.Y), strokeAttrs(paint))
}

// WriteTo writes the complete SVG document.
func (c *SVGCanvas) WriteTo(w io.Writer) (int64, error) {
	var doc bytes.Buffer
	fmt.Fprintf(&doc, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(c.size.Width), num(c.size.Height), num(c.size.Width), num(c.size.Height))
	doc.Write(c.body.Bytes())
	doc.WriteString("</svg>\n")
	return doc.WriteTo(w)
}

func fillAttrs(color Color) string {
	return fmt.Sprintf(`fill="%s" fill-opacity="%s"`, rgbHex(color), num(color.Alpha()))
}

func strokeAttrs(paint Paint) string {
	return fmt.Sprintf(`stroke="%s" stroke-opacity="%s" stroke-width="%s" stroke-linecap="%s"`,
		rgbHex(paint.Color), num(paint.Color.Alpha()), num(paint.StrokeWidth), paint.StrokeCap)
}

func rgbHex(color Color) string {
	return fmt.Sprintf("#%06X", uint32(color)&0x00FFFFFF)
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
