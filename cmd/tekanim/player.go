package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stepleton/hpgl2tek/internal/device"
)

var playerFlags = struct {
	output string
	first  int
	frames int
	delay  float64
}{}

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "Generate the BASIC player program for a 4050-series machine",
	Long: `player emits the Tektronix 4050 BASIC program that steps through the
frame files on a flash drive and draws each one. Type it in once, or
transfer it alongside the frames.`,
	RunE: runPlayer,
}

func init() {
	f := playerCmd.Flags()
	f.StringVarP(&playerFlags.output, "output", "o", "", "output file (default stdout)")
	f.IntVar(&playerFlags.first, "first", 1, "file number of the first frame on the drive")
	f.IntVar(&playerFlags.frames, "frames", 1, "number of frame files")
	f.Float64Var(&playerFlags.delay, "delay", 0, "seconds to pause between frames (0 = wait for a keypress)")
	rootCmd.AddCommand(playerCmd)
}

func runPlayer(cmd *cobra.Command, args []string) error {
	if playerFlags.frames < 1 {
		return fmt.Errorf("need at least one frame, got %d", playerFlags.frames)
	}
	program := device.PlayerProgram(playerFlags.first, playerFlags.frames, playerFlags.delay)

	if playerFlags.output == "" {
		_, err := os.Stdout.Write(program)
		return err
	}
	if err := os.WriteFile(playerFlags.output, program, 0o644); err != nil {
		return err
	}
	fmt.Printf("[+++] Wrote %s\n", playerFlags.output)
	return nil
}
