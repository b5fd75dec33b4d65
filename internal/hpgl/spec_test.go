package hpgl

import (
	"math"
	"reflect"
	"testing"

	"github.com/stepleton/hpgl2tek/internal/geom"
)

func TestParseTransformSpec(t *testing.T) {
	common, perInput, err := ParseTransformSpec("fv!s1.1, 2:r90!x10")
	if err != nil {
		t.Fatal(err)
	}

	wantCommon := Ops{FlipVertical: true, Scale: 1.1}
	if common != wantCommon {
		t.Errorf("common = %+v, want %+v", common, wantCommon)
	}

	// Per-input overrides start from the common ops in force when parsed.
	wantOverride := Ops{FlipVertical: true, Scale: 1.1, Rotate: 90, ShiftX: 10}
	if got := perInput[2]; got != wantOverride {
		t.Errorf("perInput[2] = %+v, want %+v", got, wantOverride)
	}
	if _, ok := perInput[0]; ok {
		t.Error("unexpected override for input 0")
	}
}

func TestParseTransformSpecEmpty(t *testing.T) {
	common, perInput, err := ParseTransformSpec("")
	if err != nil {
		t.Fatal(err)
	}
	if common != (Ops{}) || len(perInput) != 0 {
		t.Errorf("empty spec gave %+v, %v", common, perInput)
	}
}

func TestParseTransformSpecErrors(t *testing.T) {
	for _, spec := range []string{"q5", "sfoo", "abc:r5", "r"} {
		if _, _, err := ParseTransformSpec(spec); err == nil {
			t.Errorf("ParseTransformSpec(%q) succeeded, want error", spec)
		}
	}
}

func TestOpsMatrix(t *testing.T) {
	box := geom.Rect{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 788}

	t.Run("shift only", func(t *testing.T) {
		m := Ops{ShiftX: 10, ShiftY: -5}.Matrix(box)
		got := m.Apply(geom.Point{X: 100, Y: 100})
		if got != (geom.Point{X: 110, Y: 95}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("flip vertical mirrors about box centre", func(t *testing.T) {
		m := Ops{FlipVertical: true}.Matrix(box)
		got := m.Apply(geom.Point{X: 0, Y: 50})
		if got != (geom.Point{X: 1000, Y: 50}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("scale then shift", func(t *testing.T) {
		// Scale acts about the box midpoint, before the shift.
		m := Ops{Scale: 2, ShiftX: 10}.Matrix(box)
		got := m.Apply(geom.Point{X: 600, Y: 394})
		if math.Abs(got.X-710) > 1e-9 || math.Abs(got.Y-394) > 1e-9 {
			t.Errorf("got %v, want (710, 394)", got)
		}
	})

	t.Run("rotate about box centre", func(t *testing.T) {
		m := Ops{Rotate: 180}.Matrix(box)
		got := m.Apply(geom.Point{X: 600, Y: 394})
		if math.Abs(got.X-400) > 1e-9 || math.Abs(got.Y-394) > 1e-9 {
			t.Errorf("got %v, want (400, 394)", got)
		}
	})
}

func TestParseLineSpec(t *testing.T) {
	strokes, err := ParseLineSpec("0!0!100!100, 5!5!10!5")
	if err != nil {
		t.Fatal(err)
	}
	want := geom.Strokes{
		{{X: 0, Y: 0}, {X: 100, Y: 100}},
		{{X: 5, Y: 5}, {X: 10, Y: 5}},
	}
	if !reflect.DeepEqual(strokes, want) {
		t.Errorf("strokes = %v, want %v", strokes, want)
	}
}

func TestParseLineSpecErrors(t *testing.T) {
	for _, spec := range []string{"1!2!3", "a!b!c!d", "1!2!3!4!5"} {
		if _, err := ParseLineSpec(spec); err == nil {
			t.Errorf("ParseLineSpec(%q) succeeded, want error", spec)
		}
	}
}
