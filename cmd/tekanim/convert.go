package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stepleton/hpgl2tek/internal/archive"
	"github.com/stepleton/hpgl2tek/internal/device"
	"github.com/stepleton/hpgl2tek/internal/geom"
	"github.com/stepleton/hpgl2tek/internal/hpgl"
	"github.com/stepleton/hpgl2tek/internal/render"
	"github.com/stepleton/hpgl2tek/internal/timeline"
)

var convertFlags = struct {
	output    string
	deviceArg string
	catalog   string
	transform string
	lines     string
	number    int
}{}

var convertCmd = &cobra.Command{
	Use:   "convert HPGL [HPGL...]",
	Short: "Convert HPGL plots straight to device bytes, a ZIP, or a PNG",
	Long: `convert loads one or more HPGL plot files, fits each one to the screen,
applies optional per-input transformations, and writes the result as a
single output: raw device bytes (tek4010, tek4050r12), a one-file flash
drive ZIP (tek4050r12zip), or a rendered image (png).

Transformations are comma-separated command strings, each optionally
prefixed "N:" to apply to the Nth input only. Commands join with "!":
fh, fv, r<deg>, s<factor>, x<shift>, y<shift>. Extra lines are
comma-separated x1!y1!x2!y2 tuples.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertFlags.output, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&convertFlags.deviceArg, "device", "d", "tek4050r12", "output format: a device profile, tek4050r12zip, or png")
	f.StringVar(&convertFlags.catalog, "catalog", "", "YAML device catalog merged over the built-in profiles")
	f.StringVarP(&convertFlags.transform, "transform", "x", "", "post-fit transformations")
	f.StringVarP(&convertFlags.lines, "lines", "l", "", "extra lines drawn over the plots")
	f.IntVar(&convertFlags.number, "number", 1, "flash drive file number for tek4050r12zip output")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	strokes, err := convertStrokes(args)
	if err != nil {
		return err
	}

	switch convertFlags.deviceArg {
	case "png":
		return writePNG(strokes)
	case "tek4050r12zip":
		return writeZip(strokes)
	}
	return writeDeviceBytes(strokes)
}

// convertStrokes loads the inputs, fits each to the screen, and overlays
// them with the requested transforms and extra lines applied.
func convertStrokes(paths []string) (geom.Strokes, error) {
	common, perInput, err := hpgl.ParseTransformSpec(convertFlags.transform)
	if err != nil {
		return nil, err
	}

	box := timeline.DefaultFitBox
	var strokes geom.Strokes
	for i, path := range paths {
		drawing, err := hpgl.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		fitted := geom.FitToBox(drawing.Strokes, box)

		ops, ok := perInput[i]
		if !ok {
			ops = common
		}
		strokes = append(strokes, geom.Transform(fitted, ops.Matrix(box))...)
	}

	if convertFlags.lines != "" {
		extra, err := hpgl.ParseLineSpec(convertFlags.lines)
		if err != nil {
			return nil, err
		}
		strokes = append(strokes, extra...)
	}
	return strokes, nil
}

func writeDeviceBytes(strokes geom.Strokes) error {
	profile, err := lookupProfile(convertFlags.deviceArg)
	if err != nil {
		return err
	}
	data, err := device.Emit(strokes, profile)
	if err != nil {
		return err
	}

	if convertFlags.output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(convertFlags.output, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("[+++] Wrote %s (%d bytes)\n", convertFlags.output, len(data))
	return nil
}

func writePNG(strokes geom.Strokes) error {
	r := render.New(geom.ScreenMaxX+1, geom.ScreenMaxY)
	if convertFlags.output == "" {
		return r.EncodePNG(os.Stdout, strokes)
	}
	f, err := os.Create(convertFlags.output)
	if err != nil {
		return err
	}
	if err := r.EncodePNG(f, strokes); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("[+++] Wrote %s\n", convertFlags.output)
	return nil
}

// writeZip packs the plot as a single tek4050r12 file inside a flash drive
// ZIP, stored at the file number from --number.
func writeZip(strokes geom.Strokes) error {
	if convertFlags.output == "" {
		return fmt.Errorf("tek4050r12zip output needs -o, ZIP archives do not go to stdout")
	}
	profile, err := lookupProfile("tek4050r12")
	if err != nil {
		return err
	}
	data, err := device.Emit(strokes, profile)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(convertFlags.output), ".zip")
	if err := archive.WriteSingle(convertFlags.output, convertFlags.number, name, data); err != nil {
		return err
	}
	fmt.Printf("[+++] Wrote %s (file %d, %d bytes)\n", convertFlags.output, convertFlags.number, len(data))
	return nil
}

func lookupProfile(name string) (device.Profile, error) {
	catalog := device.DefaultCatalog()
	if convertFlags.catalog != "" {
		var err error
		catalog, err = device.LoadCatalog(convertFlags.catalog)
		if err != nil {
			return device.Profile{}, err
		}
	}
	return catalog.Lookup(name)
}
