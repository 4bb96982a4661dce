package animation

import (
	"math"
	"strings"
)

// Easing curves map linear progress t in [0, 1] to eased progress.
// Hands sweep with [LinearCurve] so consecutive ticks join into a constant
// velocity; the others are available through configuration.

// LinearCurve returns linear progress (no easing).
func LinearCurve(t float64) float64 {
	return t
}

// Ease is a general purpose curve. Equivalent to CSS ease.
var Ease = CubicBezier(0.25, 0.1, 0.25, 1.0)

// EaseIn starts slowly and accelerates. Equivalent to CSS ease-in.
var EaseIn = CubicBezier(0.4, 0.0, 1.0, 1.0)

// EaseOut starts quickly and decelerates. Equivalent to CSS ease-out.
var EaseOut = CubicBezier(0.0, 0.0, 0.2, 1.0)

// EaseInOut starts and ends slowly with acceleration in the middle.
var EaseInOut = CubicBezier(0.4, 0.0, 0.2, 1.0)

// CurveByName looks up a curve by its configuration name:
// linear, ease, ease-in, ease-out or ease-in-out. Matching ignores case.
func CurveByName(name string) (func(float64) float64, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear":
		return LinearCurve, true
	case "ease":
		return Ease, true
	case "ease-in":
		return EaseIn, true
	case "ease-out":
		return EaseOut, true
	case "ease-in-out":
		return EaseInOut, true
	default:
		return nil, false
	}
}

// CubicBezier returns a cubic-bezier easing function matching CSS cubic-bezier().
// The parameters define the two control points (x1,y1) and (x2,y2) of the curve.
// The curve starts at (0,0) and ends at (1,1).
func CubicBezier(x1, y1, x2, y2 float64) func(float64) float64 {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		// Solve x(u) = t with Newton-Raphson, then bisection if the
		// derivative flattens out.
		u := t
		for iter := 0; iter < 8; iter++ {
			x := bezierAt(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return bezierAt(y1, y2, clamp01(u))
			}
			dx := bezierSlope(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		lo, hi := 0.0, 1.0
		u = clamp01(u)
		for iter := 0; iter < 12; iter++ {
			x := bezierAt(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}
		return bezierAt(y1, y2, u)
	}
}

func bezierAt(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func bezierSlope(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
