package clockface

import "math"

// BaseRotation turns the dial so that angle 0 points at 12 o'clock.
// Angles are in degrees, clockwise, with 0 at 3 o'clock before rotation.
const BaseRotation = -90.0

// AngleOf returns the dial angle of value on a dial divided into count
// steps, rounded to whole degrees. value is reduced modulo count first, so
// hour 12 (or 15 on a 24-hour reading) lands on the 12-step dial.
func AngleOf(value, count int) float64 {
	if count <= 0 {
		return 0
	}
	value %= count
	if value < 0 {
		value += count
	}
	return math.Round(float64(value) / float64(count) * 360)
}

// DisplayAngle is AngleOf rotated by BaseRotation.
func DisplayAngle(value, count int) float64 {
	return AngleOf(value, count) + BaseRotation
}

// UnitAngle is the angle covered by one step of a count-step dial.
func UnitAngle(count int) float64 {
	return 360 / float64(count)
}
