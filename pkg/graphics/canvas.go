package graphics

// Canvas is an immediate-mode 2D drawing surface.
//
// The clock face only needs line and circle primitives, so the interface is
// kept to those. Coordinates are in pixels with the origin at the top-left.
type Canvas interface {
	// Clear fills the entire canvas with the given color.
	Clear(color Color)

	// DrawCircle draws a circle with the provided paint.
	DrawCircle(center Offset, radius float64, paint Paint)

	// DrawLine draws a line segment with the provided paint.
	// Lines are always stroked; paint.Style is ignored.
	DrawLine(start, end Offset, paint Paint)

	// Size returns the canvas dimensions.
	Size() Size
}
