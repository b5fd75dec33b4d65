// Package engine drives a render run: composing scenes for every frame in
// parallel and delivering them, strictly in frame order, to a video encoder
// or an archive writer.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stepleton/hpgl2tek/internal/config"
	"github.com/stepleton/hpgl2tek/internal/device"
	"github.com/stepleton/hpgl2tek/internal/geom"
	"github.com/stepleton/hpgl2tek/internal/render"
	"github.com/stepleton/hpgl2tek/internal/system"
	"github.com/stepleton/hpgl2tek/internal/timeline"
	"github.com/stepleton/hpgl2tek/internal/video"
)

// FrameError reports a failure composing or emitting one frame. The run
// stops at the first one; no later frames are delivered.
type FrameError struct {
	Frame int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Frame, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Frame is one rendered frame in whichever form the output target needs.
type Frame struct {
	Index   int
	Image   *image.RGBA // video target
	Data    []byte      // archive target, device byte stream
	Monitor []byte      // live preview bytes, when a monitor is attached
}

// Sink consumes frames strictly in ascending index order. Finalize runs on
// every exit from Run, success or not.
type Sink interface {
	Consume(f *Frame) error
	Finalize() error
}

// Stats describes a finished run.
type Stats struct {
	Frames       int
	Elapsed      time.Duration
	EffectiveFPS float64
	Archives     []string
}

// Project binds a compiled timeline to an output target.
type Project struct {
	Config   *config.Config
	Timeline *timeline.Timeline
	Library  timeline.Library

	// Sink may be preset for tests; Run builds one from Config otherwise.
	Sink    Sink
	Monitor io.Writer

	Stats Stats

	raster  *render.Raster
	profile device.Profile
	monProf device.Profile
	shift   shifter
}

// NewProject resolves the device profile and monitor for cfg. The sink is
// built lazily in Run because the video encoder needs the run context.
func NewProject(cfg *config.Config, tl *timeline.Timeline, lib timeline.Library) (*Project, error) {
	p := &Project{Config: cfg, Timeline: tl, Library: lib}

	catalog := device.DefaultCatalog()
	if cfg.Catalog != "" {
		var err error
		catalog, err = device.LoadCatalog(cfg.Catalog)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Target == config.TargetArchive {
		prof, err := catalog.Lookup(cfg.Device)
		if err != nil {
			return nil, err
		}
		p.profile = prof

		seed := cfg.ShiftSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		p.shift = shifter{seed: seed, enabled: !cfg.NoShift}
	}

	if cfg.MonitorPath != "" {
		mon, err := os.OpenFile(cfg.MonitorPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening monitor %s: %w", cfg.MonitorPath, err)
		}
		p.Monitor = mon
		p.monProf, _ = catalog.Lookup("tek4010")
	}

	return p, nil
}

// Run renders every frame of the timeline. Composition runs on a worker
// pool; a single goroutine reorders results and feeds the sink so frames
// always land in ascending order. Cancellation takes effect between frames,
// and the sink is finalized no matter how the run ends.
func (p *Project) Run(ctx context.Context) (err error) {
	start := time.Now()

	if p.Sink == nil {
		p.Sink, err = p.buildSink(ctx)
		if err != nil {
			return err
		}
	}
	if p.Config.Target == config.TargetVideo && p.raster == nil {
		p.raster = render.New(int(p.Timeline.Canvas.Width()), int(p.Timeline.Canvas.Height()))
		if p.Config.LineWidth > 0 {
			p.raster.LineWidth = p.Config.LineWidth
		}
	}

	defer func() {
		if ferr := p.Sink.Finalize(); ferr != nil && err == nil {
			err = ferr
		}
		if c, ok := p.Monitor.(io.Closer); ok {
			c.Close()
		}
		p.Stats.Frames = p.Timeline.Frames
		p.Stats.Elapsed = time.Since(start)
		if s := p.Stats.Elapsed.Seconds(); s > 0 {
			p.Stats.EffectiveFPS = float64(p.Timeline.Frames) / s
		}
		if as, ok := p.Sink.(*ArchiveSink); ok {
			p.Stats.Archives = as.Written
		}
	}()

	total := p.Timeline.Frames
	if total == 0 {
		return nil
	}

	workers := p.Config.Workers
	if workers <= 0 {
		workers = system.Workers()
	}
	if workers > total {
		workers = total
	}

	jobs := make(chan int)
	results := make(chan *Frame, workers*2)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for f := 0; f < total; f++ {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			defer wg.Done()
			for f := range jobs {
				frame, err := p.renderFrame(f)
				if err != nil {
					return err
				}
				select {
				case results <- frame:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	g.Go(func() error {
		pending := make(map[int]*Frame)
		next := 0
		for frame := range results {
			pending[frame.Index] = frame
			for {
				f, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				if err := p.deliver(f); err != nil {
					return err
				}
				next++
				if next%50 == 0 || next == total {
					fmt.Printf("[>] Ready: %d/%d\n", next, total)
				}
			}
		}
		return nil
	})

	return g.Wait()
}

// renderFrame does the per-frame work that is safe to run out of order.
func (p *Project) renderFrame(f int) (*Frame, error) {
	scene, err := timeline.Compose(p.Timeline, p.Library, f)
	if err != nil {
		return nil, &FrameError{Frame: f, Err: err}
	}

	frame := &Frame{Index: f}
	strokes := scene.Strokes

	switch p.Config.Target {
	case config.TargetVideo:
		frame.Image = p.raster.Render(strokes)
	case config.TargetArchive:
		data, used, err := p.shift.emit(f, strokes, p.profile)
		if err != nil {
			return nil, &FrameError{Frame: f, Err: err}
		}
		frame.Data = data
		strokes = used
	}

	if p.Monitor != nil {
		// Preview is best effort: a frame that strays off the monitor's
		// screen is skipped rather than failing the run.
		if mon, err := device.Emit(strokes, p.monProf); err == nil {
			frame.Monitor = mon
		}
	}

	return frame, nil
}

// deliver runs on the single ordered consumer.
func (p *Project) deliver(f *Frame) error {
	if p.Monitor != nil && len(f.Monitor) > 0 {
		if _, err := p.Monitor.Write(device.PageClear); err != nil {
			return fmt.Errorf("monitor: %w", err)
		}
		if _, err := p.Monitor.Write(f.Monitor); err != nil {
			return fmt.Errorf("monitor: %w", err)
		}
	}
	return p.Sink.Consume(f)
}

func (p *Project) buildSink(ctx context.Context) (Sink, error) {
	switch p.Config.Target {
	case config.TargetVideo:
		width := int(p.Timeline.Canvas.Width())
		height := int(p.Timeline.Canvas.Height())

		fps := p.Timeline.FPS
		if p.Config.FPS > 0 {
			fps = float64(p.Config.FPS)
		}

		encoderName := p.Config.VideoEncoder
		if encoderName == "" {
			encoderName = system.GetBestH264Encoder()
		}
		quality := p.Config.Quality
		if quality == 0 {
			quality = system.DefaultQuality(encoderName)
		}

		enc, err := video.NewFFmpegEncoder(ctx, video.Params{
			Path:    p.Config.OutputPath,
			Width:   width,
			Height:  height,
			FPS:     fps,
			Encoder: encoderName,
			Quality: quality,
		})
		if err != nil {
			return nil, err
		}

		endFrames := 0
		if p.Config.EndCardURL != "" {
			endFrames = int(fps * 3)
		}
		return &VideoSink{
			Encoder:       enc,
			Total:         p.Timeline.Frames,
			EndCardURL:    p.Config.EndCardURL,
			EndCardFrames: endFrames,
			Width:         width,
			Height:        height,
		}, nil

	case config.TargetArchive:
		prefix := strings.TrimSuffix(p.Config.OutputPath, ".zip")
		base := filepath.Base(prefix)
		if base == "." || base == string(filepath.Separator) {
			base = "frame"
		}
		return &ArchiveSink{
			Prefix:   prefix,
			BaseName: base,
			Capacity: p.Config.Capacity,
			Total:    p.Timeline.Frames,
		}, nil
	}
	return nil, fmt.Errorf("unknown target %q", p.Config.Target)
}

// shifter nudges each archive frame by a small random offset so long-lived
// static imagery does not burn into a storage-tube screen. The offset is a
// deterministic function of the seed and the frame index, which keeps
// parallel rendering reproducible.
type shifter struct {
	seed    int64
	enabled bool
}

func (s shifter) emit(f int, strokes geom.Strokes, prof device.Profile) ([]byte, geom.Strokes, error) {
	if !s.enabled {
		data, err := device.Emit(strokes, prof)
		return data, strokes, err
	}

	rng := rand.New(rand.NewSource(s.seed + int64(f)))
	const attempts = 8
	for i := 0; i < attempts; i++ {
		dx := float64(rng.Intn(9) - 4)
		dy := float64(rng.Intn(9) - 4)
		shifted := geom.Transform(strokes, geom.Translate(dx, dy))
		data, err := device.Emit(shifted, prof)
		if err == nil {
			return data, shifted, nil
		}
		if !errors.Is(err, device.ErrOutOfBounds) {
			return nil, nil, err
		}
	}

	// Every shift pushed something off screen; emit in place instead.
	data, err := device.Emit(strokes, prof)
	return data, strokes, err
}
