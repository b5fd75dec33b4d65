// Package timeline defines the compiled form of an animation script and the
// pure per-frame compositor that turns it into drawable scenes.
//
// A Timeline is immutable once the parser hands it over: rendering never
// writes back into it, which is what lets frames be composed concurrently
// and in any order.
package timeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/stepleton/hpgl2tek/internal/geom"
)

// DefaultFitBox is the box element sources are scaled into before any pose
// is applied. The X value stops short of the full screen because the right
// edge of the image gets truncated on real 4054A hardware.
var DefaultFitBox = geom.Rect{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 788}

// ErrFrameRange indicates a compose request outside [0, Frames).
var ErrFrameRange = errors.New("timeline: frame index out of range")

// OpKind discriminates transform operations.
type OpKind int

const (
	OpTranslate OpKind = iota
	OpRotate
	OpScale
	OpFlipH
	OpFlipV
)

// Op is one transform operation. Translate uses DX/DY; Rotate and Scale use
// Value (degrees anticlockwise, scale factor); the flips take no parameters
// and are valid in element poses only.
type Op struct {
	Kind   OpKind
	DX, DY float64
	Value  float64
}

// Range is an inclusive frame range.
type Range struct {
	Start, End int
}

// Contains reports whether frame f falls inside the range.
func (r Range) Contains(f int) bool {
	return f >= r.Start && f <= r.End
}

// Blink gates visibility on a repeating on/off cycle measured in seconds of
// animation time. Phase offsets the clock at frame zero.
type Blink struct {
	On, Off, Phase float64
}

// Visible reports whether the blink cycle is in its "on" half at time t.
func (b Blink) Visible(t float64) bool {
	period := b.On + b.Off
	if period <= 0 {
		return true
	}
	return math.Mod(math.Mod(t+b.Phase, period)+period, period) < b.On
}

// Element is a named reference to an external vector source with an initial
// pose. Elements are created by the parser and never mutated.
type Element struct {
	ID     string
	Source string // vector source path; existence-checked at parse time
	Pose   []Op   // applied in declaration order
	Show   *Range // optional visibility window; nil = whole animation
	Blink  *Blink // optional blink cycle
}

// Move schedules a transform change against an element. The operation
// targets are reached at End; interpolation is linear in frame index, and
// the finished transform persists for the rest of the animation.
type Move struct {
	Element string
	Range   Range
	Ops     []Op
}

// Line is a static stroke with an optional visibility window.
type Line struct {
	From, To geom.Point
	Range    *Range
}

// Timeline is the fully-resolved, immutable compilation of a script.
type Timeline struct {
	Elements []Element // declaration order
	Moves    []Move    // declaration order
	Lines    []Line
	Frames   int
	FPS      float64
	Canvas   geom.Rect // raster canvas; also the reference frame for poses
}

// Duration returns the animation length in seconds.
func (tl *Timeline) Duration() float64 {
	if tl.FPS <= 0 {
		return 0
	}
	return float64(tl.Frames) / tl.FPS
}

// Library maps vector source paths to their loaded, fit-to-box geometry.
// Built once before rendering; read-only afterwards.
type Library map[string]geom.Strokes

// BuildLibrary loads every element source through load and fits it into
// DefaultFitBox. Each distinct path is loaded once.
func BuildLibrary(tl *Timeline, load func(path string) (geom.Strokes, error)) (Library, error) {
	lib := make(Library)
	for _, el := range tl.Elements {
		if _, ok := lib[el.Source]; ok {
			continue
		}
		strokes, err := load(el.Source)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", el.ID, err)
		}
		lib[el.Source] = geom.FitToBox(strokes, DefaultFitBox)
	}
	return lib, nil
}

// Scene is the composed set of drawable primitives for one frame. It is
// derived on demand and never cached across frames.
type Scene struct {
	Frame   int
	Strokes geom.Strokes
}

// Compose derives the scene for one frame index. It is a pure function of
// (tl, lib, frame): no state is accumulated across calls, so frames may be
// composed in any order, concurrently, with identical results.
func Compose(tl *Timeline, lib Library, frame int) (Scene, error) {
	if frame < 0 || frame >= tl.Frames {
		return Scene{}, fmt.Errorf("%w: %d not in [0, %d)", ErrFrameRange, frame, tl.Frames)
	}

	t := 0.0
	if tl.FPS > 0 {
		t = float64(frame) / tl.FPS
	}

	scene := Scene{Frame: frame}
	for _, el := range tl.Elements {
		if el.Show != nil && !el.Show.Contains(frame) {
			continue
		}
		if el.Blink != nil && !el.Blink.Visible(t) {
			continue
		}

		m := poseMatrix(el.Pose, tl.Canvas)
		for _, mv := range tl.Moves {
			if mv.Element != el.ID {
				continue
			}
			frac := fraction(mv.Range, frame)
			if frac == 0 {
				continue
			}
			// Later-declared moves apply on top of earlier ones.
			m = moveMatrix(mv.Ops, frac, tl.Canvas).Mul(m)
		}

		scene.Strokes = append(scene.Strokes, geom.Transform(lib[el.Source], m)...)
	}

	for _, ln := range tl.Lines {
		if ln.Range != nil && !ln.Range.Contains(frame) {
			continue
		}
		scene.Strokes = append(scene.Strokes, geom.Stroke{ln.From, ln.To})
	}

	return scene, nil
}

// fraction is the interpolation progress of a move at frame f, clamped to
// [0, 1]. A zero-length range snaps to 1 at its start frame.
func fraction(r Range, f int) float64 {
	if f < r.Start {
		return 0
	}
	if f >= r.End {
		return 1
	}
	return float64(f-r.Start) / float64(r.End-r.Start)
}

func poseMatrix(ops []Op, canvas geom.Rect) geom.Affine {
	return opsMatrix(ops, 1, canvas)
}

func moveMatrix(ops []Op, frac float64, canvas geom.Rect) geom.Affine {
	return opsMatrix(ops, frac, canvas)
}

// opsMatrix builds the transform for an op list at interpolation progress
// frac. Operations compose in written order; rotation and scale act about
// the canvas midpoint, matching the plot transform conventions.
func opsMatrix(ops []Op, frac float64, canvas geom.Rect) geom.Affine {
	cx := canvas.MinX + canvas.Width()/2
	cy := canvas.MinY + canvas.Height()/2

	m := geom.Identity()
	for _, op := range ops {
		var step geom.Affine
		switch op.Kind {
		case OpTranslate:
			step = geom.Translate(frac*op.DX, frac*op.DY)
		case OpRotate:
			step = geom.RotateAbout(frac*op.Value, cx, cy)
		case OpScale:
			step = geom.ScaleAbout(1+frac*(op.Value-1), cx, cy)
		case OpFlipH:
			step = geom.FlipHorizontalAbout(cy)
		case OpFlipV:
			step = geom.FlipVerticalAbout(cx)
		default:
			step = geom.Identity()
		}
		m = step.Mul(m)
	}
	return m
}
