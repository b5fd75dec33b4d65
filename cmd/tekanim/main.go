// tekanim compiles animation scripts and renders them for Tektronix
// storage-tube terminals: MP4 video for modern playback, or chains of ZIP
// archives holding per-frame device files for the real hardware.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "tekanim",
	Short:   "Animation compiler and renderer for Tektronix storage-tube terminals",
	Version: version,
	Long: `tekanim turns a plain-text animation script into per-frame vector scenes
and renders them either as an MP4 video or as capacity-bounded ZIP archives
of device byte files for a Tektronix 4050-series flash drive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[-] Error: %v\n", err)
		os.Exit(1)
	}
}
