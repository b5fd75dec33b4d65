package geom

import "math"

// Affine is a 2D affine transform:
//
//	| A C E |   | x |
//	| B D F | * | y |
//	| 0 0 1 |   | 1 |
type Affine struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{A: 1, D: 1}
}

// Mul composes two transforms; the result applies n first, then m.
func (m Affine) Mul(n Affine) Affine {
	return Affine{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Apply transforms a single point.
func (m Affine) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// Translate returns a translation by dx, dy.
func Translate(dx, dy float64) Affine {
	return Affine{A: 1, D: 1, E: dx, F: dy}
}

// ScaleAbout returns a uniform scale by s about cx, cy.
func ScaleAbout(s, cx, cy float64) Affine {
	return Affine{A: s, D: s, E: cx * (1 - s), F: cy * (1 - s)}
}

// RotateAbout returns an anticlockwise rotation by deg degrees about cx, cy.
func RotateAbout(deg, cx, cy float64) Affine {
	theta := deg * math.Pi / 180
	sin, cos := math.Sin(theta), math.Cos(theta)
	return Affine{
		A: cos, B: sin,
		C: -sin, D: cos,
		E: cx - cos*cx + sin*cy,
		F: cy - sin*cx - cos*cy,
	}
}

// FlipHorizontalAbout mirrors along the horizontal axis through cy.
func FlipHorizontalAbout(cy float64) Affine {
	return Affine{A: 1, D: -1, F: 2 * cy}
}

// FlipVerticalAbout mirrors along the vertical axis through cx.
func FlipVerticalAbout(cx float64) Affine {
	return Affine{A: -1, D: 1, E: 2 * cx}
}

// Transform applies m to every point of a drawing, returning a new drawing.
func Transform(s Strokes, m Affine) Strokes {
	out := make(Strokes, len(s))
	for i, stroke := range s {
		mapped := make(Stroke, len(stroke))
		for j, p := range stroke {
			mapped[j] = m.Apply(p)
		}
		out[i] = mapped
	}
	return out
}

// FitToBox scales and centres a drawing inside the box, stretching the more
// tightly constrained dimension across the whole box and centring the other.
// An empty or degenerate drawing is returned unchanged.
func FitToBox(s Strokes, box Rect) Strokes {
	b := BoundsOf(s)
	if b.Width() == 0 && b.Height() == 0 {
		return Clone(s)
	}

	boxDX, boxDY := box.Width(), box.Height()
	strokeDX, strokeDY := b.Width(), b.Height()

	var scale, shiftX, shiftY float64
	// Compare aspect ratios: taller-than-box drawings are height-limited.
	if strokeDY != 0 && math.Abs(boxDX*strokeDY/boxDY) > math.Abs(strokeDX) {
		scale = boxDY / strokeDY
		shiftX = (boxDX-scale*strokeDX)/2 - scale*b.MinX + box.MinX
		shiftY = box.MinY - scale*b.MinY
	} else {
		scale = boxDX / strokeDX
		shiftX = box.MinX - scale*b.MinX
		shiftY = (boxDY-scale*strokeDY)/2 - scale*b.MinY + box.MinY
	}

	return Transform(s, Affine{A: scale, D: scale, E: shiftX, F: shiftY})
}
