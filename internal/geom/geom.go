// Package geom holds the stroke model shared by every stage of the
// pipeline: a drawing is an ordered list of strokes, a stroke an ordered
// list of points connected by straight lines.
package geom

import "math"

// Point is an x,y screen coordinate. The origin is at the bottom left,
// matching Tektronix storage-tube conventions.
type Point struct {
	X, Y float64
}

// Stroke is a polyline. A single-point stroke renders as a dot.
type Stroke []Point

// Strokes is a complete drawing.
type Strokes []Stroke

// Bounds of the Tek 4010 addressable screen area. Points emitted to a
// device must satisfy 0 < x < ScreenMaxX and 0 < y < ScreenMaxY.
const (
	ScreenMaxX = 1023
	ScreenMaxY = 780
)

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// BoundsOf computes the bounding box of a drawing. The zero Rect is
// returned for an empty drawing.
func BoundsOf(s Strokes) Rect {
	first := true
	var r Rect
	for _, stroke := range s {
		for _, p := range stroke {
			if first {
				r = Rect{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
				first = false
				continue
			}
			if p.X < r.MinX {
				r.MinX = p.X
			}
			if p.Y < r.MinY {
				r.MinY = p.Y
			}
			if p.X > r.MaxX {
				r.MaxX = p.X
			}
			if p.Y > r.MaxY {
				r.MaxY = p.Y
			}
		}
	}
	return r
}

// Clone copies a drawing so the original is never aliased.
func Clone(s Strokes) Strokes {
	out := make(Strokes, len(s))
	for i, stroke := range s {
		out[i] = append(Stroke(nil), stroke...)
	}
	return out
}

// Round snaps every coordinate to the nearest integer, the way points are
// ultimately addressed on the device grid.
func Round(s Strokes) Strokes {
	out := make(Strokes, len(s))
	for i, stroke := range s {
		rounded := make(Stroke, len(stroke))
		for j, p := range stroke {
			rounded[j] = Point{X: math.Round(p.X), Y: math.Round(p.Y)}
		}
		out[i] = rounded
	}
	return out
}

// InScreenBounds reports whether p can be addressed by a Tek terminal.
func InScreenBounds(p Point) bool {
	return p.X > 0 && p.X < ScreenMaxX && p.Y > 0 && p.Y < ScreenMaxY
}
