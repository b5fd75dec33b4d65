package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stepleton/hpgl2tek/internal/config"
	"github.com/stepleton/hpgl2tek/internal/engine"
	"github.com/stepleton/hpgl2tek/internal/geom"
	"github.com/stepleton/hpgl2tek/internal/hpgl"
	"github.com/stepleton/hpgl2tek/internal/script"
	"github.com/stepleton/hpgl2tek/internal/system"
	"github.com/stepleton/hpgl2tek/internal/timeline"
)

var animateFlags = struct {
	configPath string
	output     string
	target     string
	device     string
	catalog    string
	capacity   int
	workers    int
	fps        int
	lineWidth  float64
	encoder    string
	quality    int
	endCard    string
	monitor    string
	seed       int64
	noShift    bool
	stats      bool
}{}

var animateCmd = &cobra.Command{
	Use:   "animate SCRIPT",
	Short: "Compile a script and render every frame",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnimate,
}

func init() {
	f := animateCmd.Flags()
	f.StringVarP(&animateFlags.configPath, "config", "c", "", "YAML config file with run settings (flags win)")
	f.StringVarP(&animateFlags.output, "output", "o", "", "output path: .mp4 for video, archive prefix for archives")
	f.StringVarP(&animateFlags.target, "target", "t", "", "output target: video or archive")
	f.StringVarP(&animateFlags.device, "device", "d", "", "device profile for the archive target")
	f.StringVar(&animateFlags.catalog, "catalog", "", "YAML device catalog merged over the built-in profiles")
	f.IntVar(&animateFlags.capacity, "capacity", 0, "max files per archive")
	f.IntVarP(&animateFlags.workers, "workers", "w", 0, "compose workers (0 = all cores)")
	f.IntVar(&animateFlags.fps, "fps", 0, "override the script's frame rate for video")
	f.Float64Var(&animateFlags.lineWidth, "line-width", 0, "stroke width in pixels for video")
	f.StringVar(&animateFlags.encoder, "encoder", "", "ffmpeg H.264 encoder (default: best available)")
	f.IntVarP(&animateFlags.quality, "quality", "q", 0, "video quality (0 = encoder default)")
	f.StringVar(&animateFlags.endCard, "end-card", "", "URL shown as a QR code after the last frame")
	f.StringVar(&animateFlags.monitor, "monitor", "", "device or file that receives a live Tek 4010 preview")
	f.Int64Var(&animateFlags.seed, "seed", 0, "origin shift seed (0 = time-based)")
	f.BoolVar(&animateFlags.noShift, "no-shift", false, "disable the per-frame origin shift on archives")
	f.BoolVar(&animateFlags.stats, "stats", false, "print a performance summary")
	rootCmd.AddCommand(animateCmd)
}

func runAnimate(cmd *cobra.Command, args []string) error {
	cfg, err := animateConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	system.InitResourceLimits()
	if cfg.Target == config.TargetVideo {
		if err := system.CheckFFmpeg(); err != nil {
			return err
		}
	}

	tl, err := script.ParseFile(cfg.ScriptPath)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", cfg.ScriptPath, err)
	}
	fmt.Printf("[*] Script: %s | Frames: %d @ %.3g FPS | Elements: %d\n",
		cfg.ScriptPath, tl.Frames, tl.FPS, len(tl.Elements))

	lib, err := timeline.BuildLibrary(tl, func(path string) (geom.Strokes, error) {
		d, err := hpgl.Load(path)
		if err != nil {
			return nil, err
		}
		return d.Strokes, nil
	})
	if err != nil {
		return fmt.Errorf("loading sources: %w", err)
	}

	project, err := engine.NewProject(cfg, tl, lib)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := project.Run(ctx); err != nil {
		return err
	}

	printSummary(cfg, project.Stats)
	return nil
}

// animateConfig layers flag values over the optional config file. Only
// flags the user actually set override the file.
func animateConfig(cmd *cobra.Command, scriptPath string) (*config.Config, error) {
	cfg := config.Default()
	if animateFlags.configPath != "" {
		var err error
		cfg, err = config.Load(animateFlags.configPath)
		if err != nil {
			return nil, err
		}
	}

	set := cmd.Flags().Changed
	if set("output") {
		cfg.OutputPath = animateFlags.output
	}
	if set("target") {
		cfg.Target = animateFlags.target
	}
	if set("device") {
		cfg.Device = animateFlags.device
	}
	if set("catalog") {
		cfg.Catalog = animateFlags.catalog
	}
	if set("capacity") {
		cfg.Capacity = animateFlags.capacity
	}
	if set("workers") {
		cfg.Workers = animateFlags.workers
	}
	if set("fps") {
		cfg.FPS = animateFlags.fps
	}
	if set("line-width") {
		cfg.LineWidth = animateFlags.lineWidth
	}
	if set("encoder") {
		cfg.VideoEncoder = animateFlags.encoder
	}
	if set("quality") {
		cfg.Quality = animateFlags.quality
	}
	if set("end-card") {
		cfg.EndCardURL = animateFlags.endCard
	}
	if set("monitor") {
		cfg.MonitorPath = animateFlags.monitor
	}
	if set("seed") {
		cfg.ShiftSeed = animateFlags.seed
	}
	if set("no-shift") {
		cfg.NoShift = animateFlags.noShift
	}
	if set("stats") {
		cfg.ShowStats = animateFlags.stats
	}

	cfg.ScriptPath = scriptPath
	cfg.BuildVersion = version
	return cfg, nil
}
