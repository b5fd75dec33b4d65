// Package script parses the line-oriented animation language into a
// timeline.Timeline.
//
// A script starts with an animation header and then declares elements,
// moves and lines, one per non-blank line:
//
//	# strut and wobble
//	animation frames=150 fps=25 canvas=1024x780
//	element plane plane.hpgl scale=0.5 translate=-200,0
//	element beacon beacon.hpgl blink=0.6,0.4
//	move plane 0..60 translate=400,0 rotate=15
//	line 0,40 1023,40 range=30..149
//
// Parsing is all-or-nothing: on any error no timeline is returned, and
// nothing outside the script text is touched beyond checking that each
// element's vector source file exists.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/stepleton/hpgl2tek/internal/geom"
	"github.com/stepleton/hpgl2tek/internal/timeline"
)

// Script error classes.
var (
	// ErrSyntax indicates a malformed directive.
	ErrSyntax = errors.New("script: syntax error")

	// ErrUndeclared indicates a move referencing an element id that no
	// declaration binds.
	ErrUndeclared = errors.New("script: undeclared element")

	// ErrRedeclared indicates two element declarations sharing an id.
	ErrRedeclared = errors.New("script: element redeclared")

	// ErrRange indicates a frame range with end < start, a negative value,
	// or a frame at or beyond the declared total frame count.
	ErrRange = errors.New("script: frame range error")

	// ErrMissingSource indicates an element source file that does not exist.
	ErrMissingSource = errors.New("script: vector source not found")
)

// Error carries the 1-based script line a problem was found on.
type Error struct {
	Line   int
	Err    error
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %v: %s", e.Line, e.Err, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Parser compiles animation scripts. The zero value resolves source paths
// relative to the working directory and checks them with os.Stat.
type Parser struct {
	// BaseDir is prepended to relative source paths.
	BaseDir string

	// CheckSource validates that a source path exists. Existence only;
	// contents are not loaded at parse time. Nil means os.Stat.
	CheckSource func(path string) error
}

// ParseFile parses the script at path, resolving sources against its
// directory.
func ParseFile(path string) (*timeline.Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p := &Parser{BaseDir: filepath.Dir(path)}
	return p.Parse(f)
}

// Parse compiles a script into an immutable timeline.
func (p *Parser) Parse(r io.Reader) (*timeline.Timeline, error) {
	check := p.CheckSource
	if check == nil {
		check = func(path string) error {
			_, err := os.Stat(path)
			return err
		}
	}

	tl := &timeline.Timeline{
		Canvas: geom.Rect{MaxX: 1024, MaxY: 780},
	}
	declared := make(map[string]bool)
	sawHeader := false

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		directive, args := fields[0], fields[1:]

		if !sawHeader && directive != "animation" {
			return nil, &Error{lineNum, ErrSyntax, "animation header must come first"}
		}

		var err error
		switch directive {
		case "animation":
			if sawHeader {
				err = &Error{lineNum, ErrSyntax, "duplicate animation header"}
			} else {
				err = p.parseHeader(tl, args, lineNum)
				sawHeader = true
			}
		case "element":
			err = p.parseElement(tl, declared, args, lineNum, check)
		case "move":
			err = p.parseMove(tl, declared, args, lineNum)
		case "line":
			err = p.parseLine(tl, args, lineNum)
		default:
			err = &Error{lineNum, ErrSyntax, fmt.Sprintf("unknown directive %q", directive)}
		}
		if err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !sawHeader {
		return nil, &Error{lineNum + 1, ErrSyntax, "missing animation header"}
	}
	return tl, nil
}

func (p *Parser) parseHeader(tl *timeline.Timeline, args []string, lineNum int) error {
	seen := map[string]bool{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return &Error{lineNum, ErrSyntax, fmt.Sprintf("expected key=value, got %q", arg)}
		}
		if seen[key] {
			return &Error{lineNum, ErrSyntax, fmt.Sprintf("duplicate %q", key)}
		}
		seen[key] = true

		switch key {
		case "frames":
			n, err := strconv.Atoi(value)
			if err != nil {
				return &Error{lineNum, ErrSyntax, fmt.Sprintf("bad frames value %q", value)}
			}
			if n <= 0 {
				return &Error{lineNum, ErrRange, fmt.Sprintf("frames must be positive, got %d", n)}
			}
			tl.Frames = n
		case "fps":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return &Error{lineNum, ErrSyntax, fmt.Sprintf("bad fps value %q", value)}
			}
			if f <= 0 {
				return &Error{lineNum, ErrRange, fmt.Sprintf("fps must be positive, got %g", f)}
			}
			tl.FPS = f
		case "canvas":
			w, h, err := parseDims(value)
			if err != nil {
				return &Error{lineNum, ErrSyntax, fmt.Sprintf("bad canvas value %q", value)}
			}
			tl.Canvas = geom.Rect{MaxX: w, MaxY: h}
		default:
			return &Error{lineNum, ErrSyntax, fmt.Sprintf("unknown animation key %q", key)}
		}
	}
	if tl.Frames == 0 {
		return &Error{lineNum, ErrSyntax, "animation header needs frames="}
	}
	if tl.FPS == 0 {
		return &Error{lineNum, ErrSyntax, "animation header needs fps="}
	}
	return nil
}

func (p *Parser) parseElement(tl *timeline.Timeline, declared map[string]bool,
	args []string, lineNum int, check func(string) error) error {
	if len(args) < 2 {
		return &Error{lineNum, ErrSyntax, "element needs an id and a source file"}
	}
	id, source := args[0], args[1]
	if strings.Contains(id, "=") || strings.Contains(source, "=") {
		return &Error{lineNum, ErrSyntax, "element needs an id and a source file before any attributes"}
	}
	if declared[id] {
		return &Error{lineNum, ErrRedeclared, id}
	}

	if p.BaseDir != "" && !filepath.IsAbs(source) {
		source = filepath.Join(p.BaseDir, source)
	}
	if err := check(source); err != nil {
		return &Error{lineNum, ErrMissingSource, source}
	}

	el := timeline.Element{ID: id, Source: source}
	for _, arg := range args[2:] {
		key, value, _ := strings.Cut(arg, "=")
		switch key {
		case "translate", "rotate", "scale":
			op, err := parseOp(key, value)
			if err != nil {
				return &Error{lineNum, ErrSyntax, err.Error()}
			}
			el.Pose = append(el.Pose, op)
		case "fliph":
			el.Pose = append(el.Pose, timeline.Op{Kind: timeline.OpFlipH})
		case "flipv":
			el.Pose = append(el.Pose, timeline.Op{Kind: timeline.OpFlipV})
		case "show":
			rng, err := parseRange(value, tl.Frames)
			if err != nil {
				return &Error{lineNum, err, value}
			}
			el.Show = &rng
		case "blink":
			blink, err := parseBlink(value)
			if err != nil {
				return &Error{lineNum, ErrSyntax, err.Error()}
			}
			el.Blink = blink
		default:
			return &Error{lineNum, ErrSyntax, fmt.Sprintf("unknown element attribute %q", key)}
		}
	}

	declared[id] = true
	tl.Elements = append(tl.Elements, el)
	return nil
}

func (p *Parser) parseMove(tl *timeline.Timeline, declared map[string]bool,
	args []string, lineNum int) error {
	if len(args) < 3 {
		return &Error{lineNum, ErrSyntax, "move needs an element id, a frame range and at least one operation"}
	}
	id := args[0]
	if !declared[id] {
		return &Error{lineNum, ErrUndeclared, id}
	}
	rng, err := parseRange(args[1], tl.Frames)
	if err != nil {
		return &Error{lineNum, err, args[1]}
	}

	mv := timeline.Move{Element: id, Range: rng}
	for _, arg := range args[2:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return &Error{lineNum, ErrSyntax, fmt.Sprintf("expected op=value, got %q", arg)}
		}
		op, err := parseOp(key, value)
		if err != nil {
			return &Error{lineNum, ErrSyntax, err.Error()}
		}
		mv.Ops = append(mv.Ops, op)
	}

	tl.Moves = append(tl.Moves, mv)
	return nil
}

func (p *Parser) parseLine(tl *timeline.Timeline, args []string, lineNum int) error {
	if len(args) < 2 || len(args) > 3 {
		return &Error{lineNum, ErrSyntax, "line needs two endpoints and an optional range"}
	}
	from, err := parsePoint(args[0])
	if err != nil {
		return &Error{lineNum, ErrSyntax, err.Error()}
	}
	to, err := parsePoint(args[1])
	if err != nil {
		return &Error{lineNum, ErrSyntax, err.Error()}
	}

	ln := timeline.Line{From: from, To: to}
	if len(args) == 3 {
		key, value, ok := strings.Cut(args[2], "=")
		if !ok || key != "range" {
			return &Error{lineNum, ErrSyntax, fmt.Sprintf("expected range=S..E, got %q", args[2])}
		}
		rng, err := parseRange(value, tl.Frames)
		if err != nil {
			return &Error{lineNum, err, value}
		}
		ln.Range = &rng
	}

	tl.Lines = append(tl.Lines, ln)
	return nil
}

// parseOp parses a single transform operation key/value.
func parseOp(key, value string) (timeline.Op, error) {
	switch key {
	case "translate":
		dx, dy, err := parsePair(value)
		if err != nil {
			return timeline.Op{}, fmt.Errorf("bad translate value %q", value)
		}
		return timeline.Op{Kind: timeline.OpTranslate, DX: dx, DY: dy}, nil
	case "rotate":
		deg, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return timeline.Op{}, fmt.Errorf("bad rotate value %q", value)
		}
		return timeline.Op{Kind: timeline.OpRotate, Value: deg}, nil
	case "scale":
		s, err := strconv.ParseFloat(value, 64)
		if err != nil || s == 0 {
			return timeline.Op{}, fmt.Errorf("bad scale value %q", value)
		}
		return timeline.Op{Kind: timeline.OpScale, Value: s}, nil
	}
	return timeline.Op{}, fmt.Errorf("unknown operation %q", key)
}

// parseRange parses S..E and validates it against the total frame count.
// The error returned is one of the package sentinels, ready for wrapping.
func parseRange(s string, frames int) (timeline.Range, error) {
	lo, hi, ok := strings.Cut(s, "..")
	if !ok {
		return timeline.Range{}, ErrSyntax
	}
	start, err1 := strconv.Atoi(lo)
	end, err2 := strconv.Atoi(hi)
	if err1 != nil || err2 != nil {
		return timeline.Range{}, ErrSyntax
	}
	if start < 0 || end < 0 || end < start || end >= frames {
		return timeline.Range{}, ErrRange
	}
	return timeline.Range{Start: start, End: end}, nil
}

func parsePoint(s string) (geom.Point, error) {
	x, y, err := parsePair(s)
	if err != nil {
		return geom.Point{}, fmt.Errorf("bad point %q", s)
	}
	return geom.Point{X: x, Y: y}, nil
}

func parsePair(s string) (float64, float64, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("want two comma-separated numbers, got %q", s)
	}
	x, err1 := strconv.ParseFloat(a, 64)
	y, err2 := strconv.ParseFloat(b, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("want two comma-separated numbers, got %q", s)
	}
	return x, y, nil
}

func parseDims(s string) (float64, float64, error) {
	a, b, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("want WxH, got %q", s)
	}
	w, err1 := strconv.ParseFloat(a, 64)
	h, err2 := strconv.ParseFloat(b, 64)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("want WxH, got %q", s)
	}
	return w, h, nil
}

func parseBlink(value string) (*timeline.Blink, error) {
	parts := strings.Split(value, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("bad blink value %q: want ON,OFF[,PHASE]", value)
	}
	nums := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || (i < 2 && v < 0) {
			return nil, fmt.Errorf("bad blink value %q", value)
		}
		nums[i] = v
	}
	b := &timeline.Blink{On: nums[0], Off: nums[1]}
	if len(nums) == 3 {
		b.Phase = nums[2]
	}
	return b, nil
}
