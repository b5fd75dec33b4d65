package render

import (
	"image"
	"image/color"
	"image/draw"

	qrcode "github.com/skip2/go-qrcode"
)

// EndCard renders a QR code for url, centred on a black canvas, for holding
// at the tail of a video. The code takes up roughly half the shorter canvas
// dimension and is drawn in the same phosphor green as the strokes.
func EndCard(url string, width, height int) (*image.RGBA, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	bitmap := q.Bitmap()

	modules := len(bitmap)
	side := width
	if height < side {
		side = height
	}
	side /= 2
	cell := side / modules
	if cell < 1 {
		cell = 1
	}
	side = cell * modules

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	x0 := (width - side) / 2
	y0 := (height - side) / 2
	fg := image.NewUniform(Phosphor)
	for row := range bitmap {
		for col, dark := range bitmap[row] {
			if !dark {
				continue
			}
			rect := image.Rect(
				x0+col*cell, y0+row*cell,
				x0+(col+1)*cell, y0+(row+1)*cell,
			)
			draw.Draw(img, rect, fg, image.Point{}, draw.Src)
		}
	}
	return img, nil
}
