package hpgl

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/stepleton/hpgl2tek/internal/geom"
)

func parse(t *testing.T, src string) *Drawing {
	t.Helper()
	d, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestParseSquare(t *testing.T) {
	d := parse(t, "IN;SP1;PU0,0;PD0,10,10,10,10,0,0,0;PU;SP0;")
	want := geom.Strokes{{
		{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0},
	}}
	if !reflect.DeepEqual(d.Strokes, want) {
		t.Errorf("strokes = %v, want %v", d.Strokes, want)
	}
	if d.Bounds != (geom.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}) {
		t.Errorf("bounds = %+v", d.Bounds)
	}
}

func TestParsePenUpSplitsStrokes(t *testing.T) {
	d := parse(t, "PU0,0;PD10,0;PU20,0;PD30,0;")
	want := geom.Strokes{
		{{X: 0, Y: 0}, {X: 10, Y: 0}},
		{{X: 20, Y: 0}, {X: 30, Y: 0}},
	}
	if !reflect.DeepEqual(d.Strokes, want) {
		t.Errorf("strokes = %v, want %v", d.Strokes, want)
	}
}

func TestParsePlotAbsoluteFollowsPenState(t *testing.T) {
	d := parse(t, "PU0,0;PD;PA5,5;PU;PA9,9;PD1,1;")
	want := geom.Strokes{
		{{X: 0, Y: 0}, {X: 5, Y: 5}},
		{{X: 9, Y: 9}, {X: 1, Y: 1}},
	}
	if !reflect.DeepEqual(d.Strokes, want) {
		t.Errorf("strokes = %v, want %v", d.Strokes, want)
	}
}

func TestParsePlotRelative(t *testing.T) {
	d := parse(t, "PU10,10;PD;PR5,0,0,5;")
	want := geom.Strokes{{
		{X: 10, Y: 10}, {X: 15, Y: 10}, {X: 15, Y: 15},
	}}
	if !reflect.DeepEqual(d.Strokes, want) {
		t.Errorf("strokes = %v, want %v", d.Strokes, want)
	}
}

func TestParseMultiline(t *testing.T) {
	d := parse(t, "PU0,0;\nPD10,0\nPD10,10;")
	if len(d.Strokes) != 1 || len(d.Strokes[0]) != 3 {
		t.Errorf("strokes = %v", d.Strokes)
	}
}

func TestParseFlushAtEOF(t *testing.T) {
	// The pen is still down when input ends.
	d := parse(t, "PU0,0;PD5,5")
	if len(d.Strokes) != 1 {
		t.Fatalf("trailing stroke lost: %v", d.Strokes)
	}
}

func TestParseSkipsUnknownStatements(t *testing.T) {
	d := parse(t, "IN;SP1;VS32;LTwhat;PU0,0;PDnope;PD3,4;")
	want := geom.Strokes{{{X: 0, Y: 0}, {X: 3, Y: 4}}}
	if !reflect.DeepEqual(d.Strokes, want) {
		t.Errorf("strokes = %v, want %v", d.Strokes, want)
	}
}

func TestParseArc(t *testing.T) {
	d := parse(t, "PU10,0;PD;AA0,0,90;")
	if len(d.Strokes) != 1 {
		t.Fatalf("strokes = %v", d.Strokes)
	}
	stroke := d.Strokes[0]
	if len(stroke) < 10 {
		t.Fatalf("arc has only %d points; want a segment roughly every 4 degrees", len(stroke))
	}

	if stroke[0] != (geom.Point{X: 10, Y: 0}) {
		t.Errorf("arc starts at %v", stroke[0])
	}
	last := stroke[len(stroke)-1]
	if math.Abs(last.X) > 1e-9 || math.Abs(last.Y-10) > 1e-9 {
		t.Errorf("arc ends at (%g, %g), want (0, 10)", last.X, last.Y)
	}
	for i, p := range stroke {
		if r := math.Hypot(p.X, p.Y); math.Abs(r-10) > 1e-9 {
			t.Errorf("arc point %d off the circle: radius %g", i, r)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	d := parse(t, "")
	if len(d.Strokes) != 0 {
		t.Errorf("strokes = %v, want none", d.Strokes)
	}
}
