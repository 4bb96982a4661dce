package clockface

import "github.com/go-drift/clockface/pkg/graphics"

// Dial geometry. Radii are fractions of half the canvas width; lengths are
// in dp.
const (
	tickOuterFraction  = 0.9
	minorOuterFraction = 0.86
	tickInnerFraction  = 0.8

	hourHandFraction   = 0.3
	minuteHandFraction = 0.6
	secondHandFraction = 0.65

	boldStrokeDp   = 4.0
	normalStrokeDp = 2.0
	minorTickDp    = 3.0
	majorTickGapDp = 2.0
	centerOuterDp  = 6.0
	centerInnerDp  = 4.0

	minorTickAlpha = 0.6
)

// Angles is the displayed angle of each hand in degrees.
type Angles struct {
	Hour   float64
	Minute float64
	Second float64
}

// AnglesAt returns the resting angles for a time of day on the style's dial.
func AnglesAt(hour, minute, second int, style Style) Angles {
	style = style.withDefaults()
	return Angles{
		Hour:   DisplayAngle(hour, style.HourCount),
		Minute: DisplayAngle(minute, style.MinuteCount),
		Second: DisplayAngle(second, style.SecondCount),
	}
}

// PaintFace draws the dial with hands at the given angles. The face fills
// the canvas width; the canvas is expected to be square.
func PaintFace(canvas graphics.Canvas, angles Angles, style Style) {
	style = style.withDefaults()
	size := canvas.Size()
	center := size.Center()
	half := size.Width / 2

	bold := style.Dp(boldStrokeDp)
	normal := style.Dp(normalStrokeDp)
	tickOuter := half * tickOuterFraction
	minorOuter := half * minorOuterFraction
	tickInner := half * tickInnerFraction
	centerOuter := style.Dp(centerOuterDp)
	centerInner := style.Dp(centerInnerDp)

	canvas.Clear(style.BackgroundColor)
	canvas.DrawCircle(center, half, graphics.FillPaint(style.ContainerColor))

	content := style.ContentColor
	for degrees := 0; degrees < 360; degrees += 30 {
		d := float64(degrees)
		if degrees%90 == 0 {
			canvas.DrawCircle(center.Polar(tickInner, d), bold/2, graphics.FillPaint(content))
			canvas.DrawLine(
				center.Polar(tickOuter, d),
				center.Polar(tickInner+bold+style.Dp(majorTickGapDp), d),
				graphics.StrokePaint(content, bold),
			)
			continue
		}
		canvas.DrawLine(
			center.Polar(minorOuter, d),
			center.Polar(tickInner, d),
			graphics.StrokePaint(content.WithAlpha(minorTickAlpha), style.Dp(minorTickDp)),
		)
	}

	drawHand(canvas, center, angles.Hour, centerInner, half*hourHandFraction, bold, content)
	drawHand(canvas, center, angles.Minute, centerInner, half*minuteHandFraction, normal, content)
	canvas.DrawCircle(center, centerOuter, graphics.FillPaint(content))
	canvas.DrawCircle(center, centerInner, graphics.FillPaint(style.AccentColor))
	drawHand(canvas, center, angles.Second, centerInner, half*secondHandFraction, normal, style.AccentColor)
}

func drawHand(canvas graphics.Canvas, center graphics.Offset, angle, inner, outer, width float64, color graphics.Color) {
	canvas.DrawLine(center.Polar(inner, angle), center.Polar(outer, angle), graphics.StrokePaint(color, width))
}
