package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/stepleton/hpgl2tek/internal/config"
	"github.com/stepleton/hpgl2tek/internal/engine"
)

var (
	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("2")).
			Padding(0, 2)
	summaryTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	summaryLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(10)
)

func printSummary(cfg *config.Config, stats engine.Stats) {
	if !cfg.ShowStats {
		if len(stats.Archives) > 0 {
			fmt.Printf("[+++] Done: %d frames in %d archives\n", stats.Frames, len(stats.Archives))
		} else {
			fmt.Printf("[+++] Done: %s\n", cfg.OutputPath)
		}
		return
	}

	var b strings.Builder
	b.WriteString(summaryTitle.Render("tekanim render") + "\n")
	row := func(label, value string) {
		b.WriteString(summaryLabel.Render(label) + value + "\n")
	}
	row("build", cfg.BuildVersion)
	row("frames", fmt.Sprintf("%d", stats.Frames))
	row("elapsed", stats.Elapsed.Round(10*time.Millisecond).String())
	row("rate", fmt.Sprintf("%.1f frames/s", stats.EffectiveFPS))
	if len(stats.Archives) > 0 {
		row("archives", strings.Join(stats.Archives, "\n"+summaryLabel.Render("")))
	} else {
		row("output", cfg.OutputPath)
	}

	fmt.Println(summaryBox.Render(strings.TrimRight(b.String(), "\n")))
}
