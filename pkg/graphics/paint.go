package graphics

import "fmt"

// PaintStyle describes how shapes are filled or stroked.
type PaintStyle int

const (
	// PaintStyleFill fills the shape interior.
	PaintStyleFill PaintStyle = iota
	// PaintStyleStroke draws only the outline.
	PaintStyleStroke
)

func (s PaintStyle) String() string {
	switch s {
	case PaintStyleFill:
		return "fill"
	case PaintStyleStroke:
		return "stroke"
	default:
		return fmt.Sprintf("PaintStyle(%d)", int(s))
	}
}

// StrokeCap describes how stroke endpoints are drawn.
type StrokeCap int

const (
	CapButt  StrokeCap = iota // Flat edge at endpoint (default)
	CapRound                  // Semicircle at endpoint
)

func (c StrokeCap) String() string {
	switch c {
	case CapButt:
		return "butt"
	case CapRound:
		return "round"
	default:
		return fmt.Sprintf("StrokeCap(%d)", int(c))
	}
}

// Paint describes how a primitive is drawn.
type Paint struct {
	Color       Color
	Style       PaintStyle
	StrokeWidth float64
	StrokeCap   StrokeCap
}

// DefaultPaint returns an opaque white fill.
func DefaultPaint() Paint {
	return Paint{
		Color:       ColorWhite,
		Style:       PaintStyleFill,
		StrokeWidth: 1,
		StrokeCap:   CapButt,
	}
}

// StrokePaint returns a stroke paint with round caps.
func StrokePaint(color Color, width float64) Paint {
	return Paint{
		Color:       color,
		Style:       PaintStyleStroke,
		StrokeWidth: width,
		StrokeCap:   CapRound,
	}
}

// FillPaint returns a fill paint of the given color.
func FillPaint(color Color) Paint {
	p := DefaultPaint()
	p.Color = color
	return p
}
