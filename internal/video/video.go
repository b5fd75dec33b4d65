// Package video appends raster frames to a video container through an
// external ffmpeg process, streaming raw RGBA data over stdin.
package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
)

// Encoder receives frames in strictly ascending order and finalizes into a
// playable file. Finalize must be called on every exit path: an encoder fed
// a prefix of the animation still closes into a valid, playable file.
type Encoder interface {
	Append(img image.Image) error
	Finalize() error
}

// Params configures one encoding run.
type Params struct {
	Path    string
	Width   int
	Height  int
	FPS     float64
	Encoder string // ffmpeg video codec, e.g. libx264, h264_nvenc
	Quality int    // CRF for x264, CQ for NVENC, bitrate/100k for VideoToolbox
}

// FFmpegEncoder drives one long-lived ffmpeg process.
type FFmpegEncoder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	log    bytes.Buffer
	params Params
	done   bool
}

// NewFFmpegEncoder starts ffmpeg reading raw RGBA frames from stdin.
func NewFFmpegEncoder(ctx context.Context, params Params) (*FFmpegEncoder, error) {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", fmt.Sprintf("%g", params.FPS),
		"-i", "-",
		"-r", fmt.Sprintf("%g", params.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", params.Encoder,
	}
	args = append(args, qualityArgs(params.Encoder, params.Quality)...)
	args = append(args, params.Path)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	e := &FFmpegEncoder{cmd: cmd, params: params}
	cmd.Stdout = &e.log
	cmd.Stderr = &e.log

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	e.stdin = stdin

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return e, nil
}

func qualityArgs(encoderName string, quality int) []string {
	switch encoderName {
	case "h264_videotoolbox":
		// VideoToolbox doesn't reliably take -q:v; use a bitrate instead.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

// Append streams one frame. Frames must arrive in ascending order; ffmpeg
// assigns timestamps from the configured frame rate.
func (e *FFmpegEncoder) Append(img image.Image) error {
	if e.done {
		return fmt.Errorf("video: append after finalize")
	}
	if err := writeRawRGBA(e.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	return nil
}

// Finalize closes the stream and waits for ffmpeg to write out the
// container. Safe to call once on any exit path, including after a partial
// run: the frames appended so far remain playable.
func (e *FFmpegEncoder) Finalize() error {
	if e.done {
		return nil
	}
	e.done = true
	e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, e.log.String())
	}
	return nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
