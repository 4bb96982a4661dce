package testing

import (
	"fmt"
	"math"

	"github.com/go-drift/clockface/pkg/graphics"
)

// DisplayOp represents a serialized canvas drawing operation.
type DisplayOp struct {
	Op     string         `json:"op"`
	Params map[string]any `json:"params,omitempty"`
}

// SerializingCanvas implements graphics.Canvas and records ops as DisplayOp.
type SerializingCanvas struct {
	ops  []DisplayOp
	size graphics.Size
}

// NewSerializingCanvas returns a recording canvas of the given size.
func NewSerializingCanvas(size graphics.Size) *SerializingCanvas {
	return &SerializingCanvas{size: size}
}

// Ops returns the operations recorded so far.
func (c *SerializingCanvas) Ops() []DisplayOp {
	return c.ops
}

func (c *SerializingCanvas) Clear(color graphics.Color) {
	c.ops = append(c.ops, DisplayOp{
		Op:     "clear",
		Params: sortedMap("color", serializeColor(color)),
	})
}

func (c *SerializingCanvas) DrawCircle(center graphics.Offset, radius float64, paint graphics.Paint) {
	params := sortedMap(
		"cx", round2(center.X),
		"cy", round2(center.Y),
		"radius", round2(radius),
		"color", serializeColor(paint.Color),
	)
	if paint.Style == graphics.PaintStyleStroke {
		params["strokeWidth"] = round2(paint.StrokeWidth)
	}
	c.ops = append(c.ops, DisplayOp{Op: "drawCircle", Params: params})
}

func (c *SerializingCanvas) DrawLine(start, end graphics.Offset, paint graphics.Paint) {
	c.ops = append(c.ops, DisplayOp{
		Op: "drawLine",
		Params: sortedMap(
			"x1", round2(start.X), "y1", round2(start.Y),
			"x2", round2(end.X), "y2", round2(end.Y),
			"color", serializeColor(paint.Color),
			"strokeWidth", round2(paint.StrokeWidth),
			"cap", paint.StrokeCap.String(),
		),
	})
}

func (c *SerializingCanvas) Size() graphics.Size {
	return c.size
}

// SerializeDisplayList replays a DisplayList through a serializing canvas.
func SerializeDisplayList(dl *graphics.DisplayList) []DisplayOp {
	canvas := &SerializingCanvas{size: dl.Size()}
	dl.Paint(canvas)
	return canvas.ops
}

// CountOps returns how many operations of each kind ops contains.
func CountOps(ops []DisplayOp) map[string]int {
	counts := make(map[string]int)
	for _, op := range ops {
		counts[op.Op]++
	}
	return counts
}

func serializeColor(c graphics.Color) string {
	return fmt.Sprintf("0x%08X", uint32(c))
}

// round2 rounds a float64 to 2 decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// sortedMap creates a map from alternating key-value pairs. The snapshot
// encoder writes map keys in sorted order.
func sortedMap(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		m[kvs[i].(string)] = kvs[i+1]
	}
	return m
}
