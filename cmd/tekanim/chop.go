package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stepleton/hpgl2tek/internal/archive"
)

var chopFlags = struct {
	output   string
	capacity int
}{}

var chopCmd = &cobra.Command{
	Use:   "chop ARCHIVE.zip",
	Short: "Split an oversized flash-drive archive into capacity-bounded ones",
	Long: `chop reads a ZIP archive of numbered flash-drive files and repacks it
into a chain of archives that each fit on one drive, renumbering the files
in every archive from 1 so the drive firmware accepts them. Player
programs and LAST markers in the source are dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runChop,
}

func init() {
	f := chopCmd.Flags()
	f.StringVarP(&chopFlags.output, "output", "o", "", "archive prefix (default: source path minus .zip)")
	f.IntVar(&chopFlags.capacity, "capacity", archive.DefaultCapacity, "max files per archive")
	rootCmd.AddCommand(chopCmd)
}

func runChop(cmd *cobra.Command, args []string) error {
	source := args[0]

	files, skipped, err := archive.ReadSequence(source)
	if err != nil {
		return err
	}
	fmt.Printf("[*] %s: %d data files", source, len(files))
	if skipped > 0 {
		fmt.Printf(" (%d non-data members dropped)", skipped)
	}
	fmt.Println()

	prefix := chopFlags.output
	if prefix == "" {
		prefix = strings.TrimSuffix(source, ".zip")
	}

	paths, err := archive.WriteArchives(prefix, files, chopFlags.capacity)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("[+] Wrote %s\n", p)
	}
	fmt.Printf("[+++] Done: %d archives\n", len(paths))
	return nil
}
