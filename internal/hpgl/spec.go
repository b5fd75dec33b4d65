package hpgl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stepleton/hpgl2tek/internal/geom"
)

// Ops are the post-fit adjustments applied to one input drawing, in the
// fixed order flip, rotate, scale, shift.
type Ops struct {
	FlipHorizontal bool
	FlipVertical   bool
	Rotate         float64 // degrees anticlockwise about the box midpoint
	Scale          float64 // about the box midpoint; 0 means 1.0
	ShiftX         float64
	ShiftY         float64
}

// Matrix builds the affine transform for ops against a target box.
func (o Ops) Matrix(box geom.Rect) geom.Affine {
	cx := box.MinX + box.Width()/2
	cy := box.MinY + box.Height()/2

	m := geom.Identity()
	if o.FlipHorizontal {
		m = geom.FlipHorizontalAbout(cy).Mul(m)
	}
	if o.FlipVertical {
		m = geom.FlipVerticalAbout(cx).Mul(m)
	}
	if o.Rotate != 0 {
		m = geom.RotateAbout(o.Rotate, cx, cy).Mul(m)
	}
	if o.Scale != 0 && o.Scale != 1 {
		m = geom.ScaleAbout(o.Scale, cx, cy).Mul(m)
	}
	if o.ShiftX != 0 || o.ShiftY != 0 {
		m = geom.Translate(o.ShiftX, o.ShiftY).Mul(m)
	}
	return m
}

// ParseTransformSpec parses a transform flag value in the hpgl2tek format:
// command strings separated by commas, each optionally prefixed "N:" to
// target the Nth input only; commands within a string are separated by "!"
// and look like fv, fh, r3, s1.1, x-2.4, y7. Un-prefixed strings set the
// defaults applied to every input without an override.
func ParseTransformSpec(spec string) (common Ops, perInput map[int]Ops, err error) {
	perInput = make(map[int]Ops)
	for _, chunk := range strings.Split(spec, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		commands := chunk
		target := -1
		if idx := strings.Index(chunk, ":"); idx >= 0 {
			target, err = strconv.Atoi(strings.TrimSpace(chunk[:idx]))
			if err != nil {
				return Ops{}, nil, fmt.Errorf("bad transform target %q: %w", chunk[:idx], err)
			}
			commands = chunk[idx+1:]
		}

		ops := common
		if err := parseCommands(commands, &ops); err != nil {
			return Ops{}, nil, err
		}
		if target < 0 {
			common = ops
		} else {
			perInput[target] = ops
		}
	}
	return common, perInput, nil
}

func parseCommands(commands string, ops *Ops) error {
	for _, command := range strings.Split(commands, "!") {
		command = strings.TrimSpace(command)
		var err error
		switch {
		case command == "":
		case command == "fh":
			ops.FlipHorizontal = true
		case command == "fv":
			ops.FlipVertical = true
		case strings.HasPrefix(command, "s"):
			err = assign(&ops.Scale, command[1:], command)
		case strings.HasPrefix(command, "r"):
			err = assign(&ops.Rotate, command[1:], command)
		case strings.HasPrefix(command, "x"):
			err = assign(&ops.ShiftX, command[1:], command)
		case strings.HasPrefix(command, "y"):
			err = assign(&ops.ShiftY, command[1:], command)
		default:
			err = fmt.Errorf("unrecognised transformation command %q", command)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func assign(dst *float64, value, command string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("bad transformation command %q: %w", command, err)
	}
	*dst = v
	return nil
}

// ParseLineSpec parses the extra-lines flag format: comma-separated
// x1!y1!x2!y2 tuples, each becoming a standalone two-point stroke.
func ParseLineSpec(spec string) (geom.Strokes, error) {
	var strokes geom.Strokes
	for _, chunk := range strings.Split(spec, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		parts := strings.Split(chunk, "!")
		if len(parts) != 4 {
			return nil, fmt.Errorf("line spec %q: want x1!y1!x2!y2", chunk)
		}
		coords := make([]float64, 4)
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("line spec %q: %w", chunk, err)
			}
			coords[i] = v
		}
		strokes = append(strokes, geom.Stroke{
			{X: coords[0], Y: coords[1]},
			{X: coords[2], Y: coords[3]},
		})
	}
	return strokes, nil
}
