// Package hpgl loads basic HPGL plot files into the stroke model. Only the
// pen commands PU, PD, PA, PR and AA are interpreted; anything else a
// plotter might accept is skipped.
package hpgl

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/stepleton/hpgl2tek/internal/geom"
)

// Drawing is a parsed HPGL file.
type Drawing struct {
	Strokes geom.Strokes
	Bounds  geom.Rect
}

// Load parses the HPGL file at path.
func Load(path string) (*Drawing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vector source: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads HPGL data and collects its strokes.
func Parse(r io.Reader) (*Drawing, error) {
	pen := newPen()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		pen.feedLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vector source: %w", err)
	}
	pen.flush()
	return &Drawing{Strokes: pen.strokes, Bounds: geom.BoundsOf(pen.strokes)}, nil
}

// pen accumulates strokes from sequences of x,y arguments to HPGL pen
// commands, tracking position and up/down state across lines.
type pen struct {
	strokes geom.Strokes
	current geom.Stroke
	pos     geom.Point
	down    bool
}

func newPen() *pen {
	return &pen{}
}

func (p *pen) feedLine(line string) {
	for _, statement := range strings.Split(line, ";") {
		statement = strings.TrimSpace(statement)
		if len(statement) < 2 {
			continue
		}
		op := statement[:2]
		args, ok := parseArgs(statement[2:])
		if !ok {
			continue // Skip statements with things that aren't numbers.
		}
		switch op {
		case "PU":
			p.upMove(args)
		case "PD":
			p.downMove(args)
		case "PA":
			p.eitherMove(args)
		case "PR":
			rel := make([]float64, len(args))
			for i, a := range args {
				if i%2 == 0 {
					rel[i] = p.pos.X + a
				} else {
					rel[i] = p.pos.Y + a
				}
			}
			p.eitherMove(rel)
		case "AA":
			p.arc(args)
		}
	}
}

func parseArgs(s string) ([]float64, bool) {
	var args []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, false
		}
		args = append(args, v)
	}
	return args, true
}

// flush saves the stroke underway (if nonempty) and starts a new one.
func (p *pen) flush() {
	if len(p.current) > 0 {
		p.strokes = append(p.strokes, p.current)
	}
	if p.down {
		p.current = geom.Stroke{p.pos}
	} else {
		p.current = nil
	}
}

func (p *pen) upMove(args []float64) {
	p.down = false
	p.flush()
	if len(args) >= 2 {
		p.pos = geom.Point{X: args[len(args)-2], Y: args[len(args)-1]}
	}
}

func (p *pen) downMove(args []float64) {
	p.down = true
	if len(p.current) == 0 {
		p.current = append(p.current, p.pos)
	}
	for i := 0; i+1 < len(args); i += 2 {
		p.current = append(p.current, geom.Point{X: args[i], Y: args[i+1]})
	}
	if len(p.current) > 0 {
		p.pos = p.current[len(p.current)-1]
	}
}

func (p *pen) eitherMove(args []float64) {
	if p.down {
		p.downMove(args)
	} else {
		p.upMove(args)
	}
}

// arc draws an AA arc around a centre point in 4 degree steps.
func (p *pen) arc(args []float64) {
	if len(args) < 3 {
		return
	}
	cx, cy := args[0], args[1]
	dtheta := args[2] * math.Pi / 180

	dx, dy := p.pos.X-cx, p.pos.Y-cy
	radius := math.Hypot(dx, dy)
	theta := math.Atan2(dy, dx)

	// Final location computed directly to minimise arithmetic error.
	fx := cx + radius*math.Cos(theta+dtheta)
	fy := cy + radius*math.Sin(theta+dtheta)

	steps := int(math.Ceil(math.Abs(dtheta * 180 / math.Pi / 4)))
	if steps > 0 {
		sd := dtheta / float64(steps)
		for i := 1; i < steps-1; i++ {
			sx := cx + radius*math.Cos(theta+float64(i)*sd)
			sy := cy + radius*math.Sin(theta+float64(i)*sd)
			p.eitherMove([]float64{sx, sy})
		}
	}
	p.eitherMove([]float64{fx, fy})
}
