package graphics

import (
	"bytes"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#6750A4", Color(0xFF6750A4), false},
		{"6750a4", Color(0xFF6750A4), false},
		{"#806750A4", Color(0x806750A4), false},
		{"#FFF", 0, true},
		{"#GG0000", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %#x, want %#x", tt.in, uint32(got), uint32(tt.want))
			}
		})
	}
}

func TestColorHex(t *testing.T) {
	if got := RGB(0x1C, 0x1B, 0x1F).Hex(); got != "#1C1B1F" {
		t.Errorf("Hex() = %q", got)
	}
	if got := RGB(0x1C, 0x1B, 0x1F).WithAlpha(0.6).Hex(); got != "#991C1B1F" {
		t.Errorf("Hex() with alpha = %q", got)
	}
}

func TestColorWithAlpha(t *testing.T) {
	c := ColorBlack.WithAlpha(0.6)
	if got := c.NRGBA(); got != (color.NRGBA{A: 153}) {
		t.Errorf("NRGBA() = %+v", got)
	}
	if math.Abs(c.Alpha()-0.6) > 0.01 {
		t.Errorf("Alpha() = %v, want ~0.6", c.Alpha())
	}
}

func TestOffsetPolar(t *testing.T) {
	center := Offset{X: 50, Y: 50}
	tests := []struct {
		degrees float64
		want    Offset
	}{
		{0, Offset{X: 60, Y: 50}},
		{90, Offset{X: 50, Y: 60}},
		{-90, Offset{X: 50, Y: 40}},
		{180, Offset{X: 40, Y: 50}},
	}
	approx := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })
	for _, tt := range tests {
		got := center.Polar(10, tt.degrees)
		if diff := cmp.Diff(tt.want, got, approx); diff != "" {
			t.Errorf("Polar(10, %v) mismatch (-want +got):\n%s", tt.degrees, diff)
		}
	}
}

type countingCanvas struct {
	size    Size
	clears  int
	circles int
	lines   int
}

func (c *countingCanvas) Clear(Color)                       { c.clears++ }
func (c *countingCanvas) DrawCircle(Offset, float64, Paint) { c.circles++ }
func (c *countingCanvas) DrawLine(Offset, Offset, Paint)    { c.lines++ }
func (c *countingCanvas) Size() Size                        { return c.size }

func TestPictureRecorderReplay(t *testing.T) {
	var rec PictureRecorder
	canvas := rec.BeginRecording(Square(100))
	canvas.Clear(ColorWhite)
	canvas.DrawCircle(Offset{X: 50, Y: 50}, 10, FillPaint(ColorBlack))
	canvas.DrawLine(Offset{}, Offset{X: 10, Y: 10}, StrokePaint(ColorBlack, 2))
	canvas.DrawLine(Offset{}, Offset{X: 20, Y: 10}, StrokePaint(ColorBlack, 2))
	list := rec.EndRecording()

	if list.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", list.Len())
	}
	if list.Size() != Square(100) {
		t.Errorf("Size() = %+v", list.Size())
	}

	target := &countingCanvas{}
	list.Paint(target)
	if target.clears != 1 || target.circles != 1 || target.lines != 2 {
		t.Errorf("replay counts = %+v", target)
	}

	// Drawing after EndRecording is dropped.
	canvas.DrawLine(Offset{}, Offset{X: 1}, DefaultPaint())
	if list.Len() != 4 {
		t.Errorf("display list mutated after EndRecording")
	}
}

func TestRasterCanvasCircle(t *testing.T) {
	c := NewRasterCanvas(40, 40)
	c.Clear(ColorWhite)
	c.DrawCircle(Offset{X: 20, Y: 20}, 10, FillPaint(RGB(255, 0, 0)))

	if got := c.Image().RGBAAt(20, 20); got.R < 250 || got.G > 5 || got.B > 5 {
		t.Errorf("center pixel = %+v, want red", got)
	}
	if got := c.Image().RGBAAt(2, 2); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("corner pixel = %+v, want white", got)
	}
}

func TestRasterCanvasRing(t *testing.T) {
	c := NewRasterCanvas(40, 40)
	paint := Paint{Color: ColorBlack, Style: PaintStyleStroke, StrokeWidth: 4}
	c.DrawCircle(Offset{X: 20, Y: 20}, 12, paint)

	if got := c.Image().RGBAAt(20, 20); got.A != 0 {
		t.Errorf("ring center should stay transparent, got %+v", got)
	}
	if got := c.Image().RGBAAt(32, 20); got.A < 250 {
		t.Errorf("ring edge should be opaque, got %+v", got)
	}
}

func TestRasterCanvasLine(t *testing.T) {
	c := NewRasterCanvas(40, 40)
	c.DrawLine(Offset{X: 5, Y: 20}, Offset{X: 35, Y: 20}, StrokePaint(ColorBlack, 4))

	if got := c.Image().RGBAAt(20, 20); got.A < 250 {
		t.Errorf("midpoint alpha = %d, want opaque", got.A)
	}
	// The round cap reaches past the endpoint.
	if got := c.Image().RGBAAt(36, 20); got.A == 0 {
		t.Errorf("round cap not drawn past endpoint")
	}
	if got := c.Image().RGBAAt(20, 30); got.A != 0 {
		t.Errorf("pixel away from the line should be empty, got %+v", got)
	}
}

func TestRasterCanvasEncodeAndScale(t *testing.T) {
	c := NewRasterCanvas(64, 64)
	c.Clear(ColorWhite)
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}

	small := c.Scaled(16, 16)
	if small.Bounds().Dx() != 16 || small.Bounds().Dy() != 16 {
		t.Errorf("Scaled bounds = %v", small.Bounds())
	}
}

func TestSVGCanvas(t *testing.T) {
	c := NewSVGCanvas(Square(100))
	c.Clear(ColorWhite)
	c.DrawCircle(Offset{X: 50, Y: 50}, 4, FillPaint(RGB(0x67, 0x50, 0xA4)))
	c.DrawLine(Offset{X: 50, Y: 50}, Offset{X: 50, Y: 10}, StrokePaint(ColorBlack.WithAlpha(0.6), 2))

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="100.00"`,
		`<circle cx="50.00" cy="50.00" r="4.00" fill="#6750A4"`,
		`stroke-linecap="round"`,
		`stroke-opacity="0.60"`,
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q:\n%s", want, out)
		}
	}
}
