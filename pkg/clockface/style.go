package clockface

import (
	"time"

	"github.com/go-drift/clockface/pkg/animation"
	"github.com/go-drift/clockface/pkg/graphics"
)

// StateRestorationID is the restoration key the clock state is saved under.
const StateRestorationID = "clockface.state"

// DefaultDuration is how long one hand step takes. It finishes just before
// the next one-second reading arrives.
const DefaultDuration = 950 * time.Millisecond

// Style configures the dial and how hands move.
type Style struct {
	// HourCount, MinuteCount and SecondCount are the number of steps in a
	// full turn of each hand.
	HourCount   int
	MinuteCount int
	SecondCount int

	// Duration is the sweep time of one step.
	Duration time.Duration
	// Curve eases the sweep. Nil means linear.
	Curve func(float64) float64

	// Density is the number of pixels per dp.
	Density float64

	// BackgroundColor fills the canvas behind the dial.
	BackgroundColor graphics.Color
	// ContainerColor fills the dial.
	ContainerColor graphics.Color
	// ContentColor draws ticks, the hour and minute hands and the outer center dot.
	ContentColor graphics.Color
	// AccentColor draws the second hand and the inner center dot.
	AccentColor graphics.Color
}

// DefaultStyle returns a 12/60/60 dial with the baseline light palette.
func DefaultStyle() Style {
	return Style{
		HourCount:       12,
		MinuteCount:     60,
		SecondCount:     60,
		Duration:        DefaultDuration,
		Curve:           animation.LinearCurve,
		Density:         1,
		BackgroundColor: graphics.ColorTransparent,
		ContainerColor:  graphics.RGB(0xFF, 0xFB, 0xFE),
		ContentColor:    graphics.RGB(0x1C, 0x1B, 0x1F),
		AccentColor:     graphics.RGB(0x67, 0x50, 0xA4),
	}
}

// Dp converts density-independent units to pixels.
func (s Style) Dp(v float64) float64 {
	if s.Density <= 0 {
		return v
	}
	return v * s.Density
}

func (s Style) withDefaults() Style {
	d := DefaultStyle()
	if s.HourCount <= 0 {
		s.HourCount = d.HourCount
	}
	if s.MinuteCount <= 0 {
		s.MinuteCount = d.MinuteCount
	}
	if s.SecondCount <= 0 {
		s.SecondCount = d.SecondCount
	}
	if s.Duration <= 0 {
		s.Duration = d.Duration
	}
	if s.Curve == nil {
		s.Curve = d.Curve
	}
	if s.Density <= 0 {
		s.Density = d.Density
	}
	return s
}
