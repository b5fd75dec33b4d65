package video

import (
	"bytes"
	"image"
	"image/color"
	"reflect"
	"testing"
)

func TestQualityArgs(t *testing.T) {
	tests := []struct {
		encoder string
		quality int
		want    []string
	}{
		{"h264_videotoolbox", 75, []string{"-b:v", "7500k"}},
		{"h264_nvenc", 28, []string{"-cq", "28"}},
		{"libx264", 23, []string{"-crf", "23", "-preset", "medium"}},
		{"something_else", 23, []string{"-crf", "23", "-preset", "medium"}},
	}
	for _, tt := range tests {
		t.Run(tt.encoder, func(t *testing.T) {
			if got := qualityArgs(tt.encoder, tt.quality); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("qualityArgs(%s, %d) = %v, want %v", tt.encoder, tt.quality, got, tt.want)
			}
		})
	}
}

func TestWriteRawRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, img); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 4*3*4 {
		t.Fatalf("wrote %d bytes, want %d", buf.Len(), 4*3*4)
	}
	offset := (1*4 + 2) * 4
	got := buf.Bytes()[offset : offset+4]
	if !bytes.Equal(got, []byte{10, 20, 30, 255}) {
		t.Errorf("pixel bytes = %v", got)
	}
}

func TestWriteRawRGBAConvertsOtherFormats(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.SetGray(0, 0, color.Gray{Y: 128})

	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, gray); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 2*2*4 {
		t.Fatalf("wrote %d bytes, want %d", buf.Len(), 2*2*4)
	}
	if a := buf.Bytes()[3]; a != 255 {
		t.Errorf("converted pixel alpha = %d, want opaque", a)
	}
}
