// Package render rasterizes composed scenes into phosphor-green frames for
// video output, and draws the optional QR end card.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"

	"github.com/stepleton/hpgl2tek/internal/geom"
	"github.com/stepleton/hpgl2tek/internal/system"
)

// Phosphor is the stroke colour. A Tek screen is a green screen.
var Phosphor = color.RGBA{G: 255, A: 255}

// Raster draws scenes onto a fixed-size canvas.
type Raster struct {
	Width, Height int
	LineWidth     float64
	Foreground    color.RGBA
}

// New returns a renderer for a canvas of the given pixel size.
func New(width, height int) *Raster {
	return &Raster{
		Width:      width,
		Height:     height,
		LineWidth:  1.5,
		Foreground: Phosphor,
	}
}

// Render rasterizes a drawing. Stroke coordinates use a bottom-left origin,
// so the vertical axis is flipped into image space here. The returned frame
// comes from the shared image pool; hand it back with system.PutImage once
// it has been encoded.
func (r *Raster) Render(s geom.Strokes) *image.RGBA {
	img := system.GetImage(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	rast := vector.NewRasterizer(r.Width, r.Height)
	half := r.LineWidth / 2
	if half <= 0 {
		half = 0.5
	}

	for _, stroke := range s {
		if len(stroke) == 0 {
			continue
		}
		if len(stroke) == 1 {
			r.addDot(rast, stroke[0], half)
			continue
		}
		for i := 0; i+1 < len(stroke); i++ {
			r.addSegment(rast, stroke[i], stroke[i+1], half)
		}
	}

	rast.Draw(img, img.Bounds(), image.NewUniform(r.Foreground), image.Point{})
	return img
}

// EncodePNG rasterizes a drawing and writes the frame to w as a PNG. The
// intermediate image goes back to the pool once encoded.
func (r *Raster) EncodePNG(w io.Writer, s geom.Strokes) error {
	img := r.Render(s)
	defer system.PutImage(img)
	return png.Encode(w, img)
}

// addSegment adds a quad covering the segment stroked at width 2*half.
func (r *Raster) addSegment(rast *vector.Rasterizer, p, q geom.Point, half float64) {
	px, py := r.toImage(p)
	qx, qy := r.toImage(q)

	dx, dy := qx-px, qy-py
	length := math.Hypot(dx, dy)
	if length == 0 {
		r.addDot(rast, p, half)
		return
	}
	// Perpendicular offset of half the stroke width.
	nx := -dy / length * half
	ny := dx / length * half

	rast.MoveTo(float32(px+nx), float32(py+ny))
	rast.LineTo(float32(qx+nx), float32(qy+ny))
	rast.LineTo(float32(qx-nx), float32(qy-ny))
	rast.LineTo(float32(px-nx), float32(py-ny))
	rast.ClosePath()
}

// addDot adds a small square so lone points still show up.
func (r *Raster) addDot(rast *vector.Rasterizer, p geom.Point, half float64) {
	x, y := r.toImage(p)
	rast.MoveTo(float32(x-half), float32(y-half))
	rast.LineTo(float32(x+half), float32(y-half))
	rast.LineTo(float32(x+half), float32(y+half))
	rast.LineTo(float32(x-half), float32(y+half))
	rast.ClosePath()
}

func (r *Raster) toImage(p geom.Point) (float64, float64) {
	return p.X, float64(r.Height) - p.Y
}
