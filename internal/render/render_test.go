package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stepleton/hpgl2tek/internal/geom"
)

func TestRenderFrameGeometry(t *testing.T) {
	r := New(100, 80)
	img := r.Render(geom.Strokes{{{X: 10, Y: 10}, {X: 90, Y: 10}}})

	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
		t.Fatalf("frame is %dx%d, want 100x80", b.Dx(), b.Dy())
	}

	// The origin is bottom-left, so stroke y=10 lands near image row 70.
	on := img.RGBAAt(50, 70)
	if on.G == 0 {
		t.Errorf("pixel on the stroke is dark: %+v", on)
	}
	if on.R != 0 || on.B != 0 {
		t.Errorf("stroke is not phosphor green: %+v", on)
	}

	off := img.RGBAAt(50, 20)
	if off != (color.RGBA{A: 255}) {
		t.Errorf("background pixel = %+v, want opaque black", off)
	}
}

func TestRenderDot(t *testing.T) {
	r := New(40, 40)
	img := r.Render(geom.Strokes{{{X: 20, Y: 20}}})
	if img.RGBAAt(20, 20).G == 0 {
		t.Error("lone point rendered invisible")
	}
}

func TestRenderEmptyScene(t *testing.T) {
	r := New(16, 16)
	img := r.Render(nil)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if px := img.RGBAAt(x, y); px != (color.RGBA{A: 255}) {
				t.Fatalf("pixel (%d,%d) = %+v on an empty frame", x, y, px)
			}
		}
	}
}

func TestRenderLineWidth(t *testing.T) {
	thin := New(100, 100)
	thin.LineWidth = 1

	thick := New(100, 100)
	thick.LineWidth = 8

	stroke := geom.Strokes{{{X: 10, Y: 50}, {X: 90, Y: 50}}}
	lit := func(r *Raster) int {
		img := r.Render(stroke)
		n := 0
		for y := 0; y < 100; y++ {
			for x := 0; x < 100; x++ {
				if img.RGBAAt(x, y).G > 0 {
					n++
				}
			}
		}
		return n
	}

	if thinN, thickN := lit(thin), lit(thick); thickN <= thinN {
		t.Errorf("thick stroke lit %d pixels, thin lit %d", thickN, thinN)
	}
}

func TestEncodePNG(t *testing.T) {
	r := New(100, 80)
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf, geom.Strokes{{{X: 10, Y: 10}, {X: 90, Y: 10}}}); err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
		t.Fatalf("decoded image is %dx%d, want 100x80", b.Dx(), b.Dy())
	}

	r32, g32, b32, _ := img.At(50, 70).RGBA()
	if g32 == 0 || r32 != 0 || b32 != 0 {
		t.Errorf("pixel on the stroke = (%d, %d, %d), want pure green", r32, g32, b32)
	}
}

func TestEndCard(t *testing.T) {
	img, err := EndCard("https://example.org/animation", 1024, 780)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 1024 || b.Dy() != 780 {
		t.Fatalf("end card is %dx%d", b.Dx(), b.Dy())
	}

	// Some modules must be lit, and only in green.
	lit := 0
	for y := 0; y < 780; y++ {
		for x := 0; x < 1024; x++ {
			px := img.RGBAAt(x, y)
			if px.G > 0 {
				lit++
			}
			if px.R != 0 || px.B != 0 {
				t.Fatalf("pixel (%d,%d) = %+v, want green on black", x, y, px)
			}
		}
	}
	if lit == 0 {
		t.Error("end card has no visible QR modules")
	}
}
