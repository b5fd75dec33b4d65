// Package device serializes stroke drawings into the command byte streams
// understood by Tektronix storage-tube terminals and computers. Two
// encodings are supported: the 4010 terminal family's 4/5-byte vectors and
// the 4050-series R12 "fast graphics" ROM pack's 3-byte vectors, the latter
// wrapped into tape records for the McGraw flash drive device.
package device

import (
	"errors"
	"fmt"
	"math"

	"github.com/stepleton/hpgl2tek/internal/geom"
)

// ErrOutOfBounds indicates a point outside the addressable screen area.
var ErrOutOfBounds = errors.New("device: screen coordinates out of bounds")

// ErrUnknownEncoding indicates a profile naming an encoding this package
// does not implement.
var ErrUnknownEncoding = errors.New("device: unknown encoding")

// Emit serializes a drawing for the profile's device. Every point must land
// strictly inside the 4010 screen area (0 < x < 1023, 0 < y < 780; yes, the
// 4010 area, even for the 405x) or ErrOutOfBounds is returned.
func Emit(s geom.Strokes, p Profile) ([]byte, error) {
	s = geom.Round(s)
	if err := checkBounds(s); err != nil {
		return nil, err
	}
	switch p.Encoding {
	case EncodingTek4010:
		return encodeStrokes(s, xyToTek4010, []byte{0x1f}), nil
	case EncodingTek4050R12:
		commands := encodeStrokes(s, xyToTek4050R12, nil)
		return TapeRecords(commands, p.RecordSize), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, p.Encoding)
	}
}

func checkBounds(s geom.Strokes) error {
	for _, stroke := range s {
		for _, pt := range stroke {
			if !geom.InScreenBounds(pt) {
				return fmt.Errorf("%w: x=%g, y=%g; has something been translated, "+
					"scaled, or rotated so that part of it is positioned off screen?",
					ErrOutOfBounds, pt.X, pt.Y)
			}
		}
	}
	return nil
}

// pointEncoder converts one point into command bytes. The move flag says
// the point starts a new stroke rather than extending the current one.
type pointEncoder func(p geom.Point, move bool) []byte

func encodeStrokes(s geom.Strokes, enc pointEncoder, trailer []byte) []byte {
	var out []byte
	for _, stroke := range s {
		if len(stroke) == 0 {
			continue
		}
		out = append(out, enc(stroke[0], true)...)
		if len(stroke) == 1 {
			// A lone point draws as a dot: draw to itself.
			out = append(out, enc(stroke[0], false)...)
			continue
		}
		for _, pt := range stroke[1:] {
			out = append(out, enc(pt, false)...)
		}
	}
	return append(out, trailer...)
}

// xyToTek4010 packs a point into the 4010's high-Y/low-Y/high-X/low-X byte
// scheme, prefixed with GS when starting a new stroke.
func xyToTek4010(p geom.Point, move bool) []byte {
	x := int(math.Round(p.X)) & 0x3ff
	y := int(math.Round(p.Y)) & 0x3ff
	bytes := []byte{
		byte(0x20 | y>>5),
		byte(0x60 | y&0x1f),
		byte(0x20 | x>>5),
		byte(0x40 | x&0x1f),
	}
	if move {
		return append([]byte{0x1d}, bytes...)
	}
	return bytes
}

// xyToTek4050R12 packs a point into the R12 ROM's three-byte scheme: high
// bits of both axes share the first byte along with the move flag.
func xyToTek4050R12(p geom.Point, move bool) []byte {
	x := int(math.Round(p.X)) & 0x3ff
	y := int(math.Round(p.Y)) & 0x3ff
	b1 := byte(x>>7<<3 | y>>7)
	if move {
		b1 |= 0x40
	}
	return []byte{b1, byte(x & 0x7f), byte(y & 0x7f)}
}

// DefaultRecordSize is the R12 tape record payload limit.
const DefaultRecordSize = 8175

// TapeRecords wraps R12 command data into McGraw flash drive tape records:
// payloads capped at recordSize bytes, each prefixed with a two-byte length
// header and followed by a zero byte. Records after the first re-assert the
// previous record's final point as a move so strokes survive the split. A
// final one-byte "X" record tells the player program to stop reading.
func TapeRecords(commands []byte, recordSize int) []byte {
	if recordSize <= 0 {
		recordSize = DefaultRecordSize
	}

	var records [][]byte
	for p := 0; p < len(commands); p += recordSize {
		end := p + recordSize
		if end > len(commands) {
			end = len(commands)
		}
		records = append(records, commands[p:end])
	}
	for i := 1; i < len(records); i++ {
		last := records[i-1]
		continuation := []byte{last[len(last)-3] | 0x40, last[len(last)-2], last[len(last)-1]}
		records[i] = append(continuation, records[i]...)
	}

	var out []byte
	for _, r := range records {
		out = append(out, byte(0x40|len(r)>>8), byte(len(r)&0xff))
		out = append(out, r...)
		out = append(out, 0)
	}
	// Nobody knows what the final 'h' is for.
	return append(out, 0x40, 0x01, 'X', 'h')
}
