package script

import (
	"errors"
	"strings"
	"testing"

	"github.com/stepleton/hpgl2tek/internal/timeline"
)

// parse compiles a script with source existence checks stubbed out.
func parse(t *testing.T, src string) (*timeline.Timeline, error) {
	t.Helper()
	p := &Parser{CheckSource: func(string) error { return nil }}
	return p.Parse(strings.NewReader(src))
}

const header = "animation frames=100 fps=25 canvas=1024x780\n"

func TestParseFullScript(t *testing.T) {
	src := header +
		"# title sequence\n" +
		"element plane plane.hpgl translate=10,20 rotate=-5 scale=0.5 fliph show=0..99 blink=0.2,0.2,0.1\n" +
		"element label label.hpgl\n" +
		"\n" +
		"move plane 0..10 translate=100,0\n" +
		"move plane 20..40 rotate=90 scale=2\n" +
		"line 0,0 1023,779 range=50..60\n" +
		"line 10,10 20,20\n"

	tl, err := parse(t, src)
	if err != nil {
		t.Fatal(err)
	}

	if tl.Frames != 100 || tl.FPS != 25 {
		t.Errorf("header: frames=%d fps=%g", tl.Frames, tl.FPS)
	}
	if tl.Canvas.MaxX != 1024 || tl.Canvas.MaxY != 780 {
		t.Errorf("canvas = %+v", tl.Canvas)
	}
	if len(tl.Elements) != 2 || len(tl.Moves) != 2 || len(tl.Lines) != 2 {
		t.Fatalf("got %d elements, %d moves, %d lines", len(tl.Elements), len(tl.Moves), len(tl.Lines))
	}

	plane := tl.Elements[0]
	if plane.ID != "plane" {
		t.Errorf("element id = %q", plane.ID)
	}
	if len(plane.Pose) != 4 {
		t.Fatalf("plane pose has %d ops, want 4", len(plane.Pose))
	}
	wantKinds := []timeline.OpKind{
		timeline.OpTranslate, timeline.OpRotate, timeline.OpScale, timeline.OpFlipH,
	}
	for i, k := range wantKinds {
		if plane.Pose[i].Kind != k {
			t.Errorf("pose op %d kind = %v, want %v", i, plane.Pose[i].Kind, k)
		}
	}
	if plane.Show == nil || plane.Show.Start != 0 || plane.Show.End != 99 {
		t.Errorf("plane show = %+v", plane.Show)
	}
	if plane.Blink == nil || plane.Blink.On != 0.2 || plane.Blink.Phase != 0.1 {
		t.Errorf("plane blink = %+v", plane.Blink)
	}

	mv := tl.Moves[1]
	if mv.Element != "plane" || mv.Range != (timeline.Range{Start: 20, End: 40}) || len(mv.Ops) != 2 {
		t.Errorf("second move = %+v", mv)
	}

	if tl.Lines[0].Range == nil || tl.Lines[0].Range.Start != 50 {
		t.Errorf("first line range = %+v", tl.Lines[0].Range)
	}
	if tl.Lines[1].Range != nil {
		t.Errorf("second line should have no range")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantErr  error
		wantLine int
	}{
		{"missing header", "element a a.hpgl\n", ErrSyntax, 1},
		{"empty script", "", ErrSyntax, 1},
		{"duplicate header", header + "animation frames=5 fps=1\n", ErrSyntax, 2},
		{"header missing fps", "animation frames=10\n", ErrSyntax, 1},
		{"zero frames", "animation frames=0 fps=25\n", ErrRange, 1},
		{"unknown directive", header + "wiggle a b\n", ErrSyntax, 2},
		{"redeclared element", header + "element a a.hpgl\nelement a a.hpgl\n", ErrRedeclared, 3},
		{"move of undeclared element", header + "move ghost 0..5 translate=1,1\n", ErrUndeclared, 2},
		{"range end before start", header + "element a a.hpgl\nmove a 5..2 translate=1,1\n", ErrRange, 3},
		{"range past animation end", header + "element a a.hpgl\nmove a 0..100 translate=1,1\n", ErrRange, 3},
		{"negative range", header + "element a a.hpgl\nmove a -1..5 translate=1,1\n", ErrRange, 3},
		{"malformed range", header + "element a a.hpgl\nmove a 0-5 translate=1,1\n", ErrSyntax, 3},
		{"bad op value", header + "element a a.hpgl\nmove a 0..5 translate=banana\n", ErrSyntax, 3},
		{"unknown op", header + "element a a.hpgl\nmove a 0..5 swirl=3\n", ErrSyntax, 3},
		{"zero scale", header + "element a a.hpgl\nmove a 0..5 scale=0\n", ErrSyntax, 3},
		{"bad blink", header + "element a a.hpgl blink=1\n", ErrSyntax, 2},
		{"line with one point", header + "line 0,0\n", ErrSyntax, 2},
		{"line bad range keyword", header + "line 0,0 1,1 during=0..5\n", ErrSyntax, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.src)
			if err == nil {
				t.Fatal("parse succeeded, want error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			var scriptErr *Error
			if !errors.As(err, &scriptErr) {
				t.Fatalf("err %v is not a script.Error", err)
			}
			if scriptErr.Line != tt.wantLine {
				t.Errorf("error on line %d, want %d", scriptErr.Line, tt.wantLine)
			}
		})
	}
}

func TestParseMissingSource(t *testing.T) {
	missing := errors.New("nope")
	p := &Parser{CheckSource: func(path string) error {
		if path == "gone.hpgl" {
			return missing
		}
		return nil
	}}

	src := header + "element ok ok.hpgl\nelement bad gone.hpgl\n"
	_, err := p.Parse(strings.NewReader(src))
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("err = %v, want ErrMissingSource", err)
	}
	var scriptErr *Error
	if errors.As(err, &scriptErr) && scriptErr.Line != 3 {
		t.Errorf("error on line %d, want 3", scriptErr.Line)
	}
}

func TestParseAllOrNothing(t *testing.T) {
	// A script that fails late still yields no timeline at all.
	src := header + "element a a.hpgl\nmove a 0..5 translate=1,1\nmove a 0..200 translate=1,1\n"
	tl, err := parse(t, src)
	if err == nil {
		t.Fatal("parse succeeded, want error")
	}
	if tl != nil {
		t.Errorf("partial timeline returned alongside error: %+v", tl)
	}
}

func TestParseBaseDir(t *testing.T) {
	var checked []string
	p := &Parser{
		BaseDir: "/anim/scripts",
		CheckSource: func(path string) error {
			checked = append(checked, path)
			return nil
		},
	}
	src := header + "element a plane.hpgl\nelement b /abs/label.hpgl\n"
	tl, err := p.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if tl.Elements[0].Source != "/anim/scripts/plane.hpgl" {
		t.Errorf("relative source = %q", tl.Elements[0].Source)
	}
	if tl.Elements[1].Source != "/abs/label.hpgl" {
		t.Errorf("absolute source = %q", tl.Elements[1].Source)
	}
	if len(checked) != 2 {
		t.Errorf("checked %d sources, want 2", len(checked))
	}
}

func TestParseCommentsAndBlanks(t *testing.T) {
	src := "# leading comment\n\n" + header + "\n# mid comment\nelement a a.hpgl\n"
	tl, err := parse(t, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(tl.Elements) != 1 {
		t.Errorf("got %d elements, want 1", len(tl.Elements))
	}
}
