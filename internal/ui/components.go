package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/olivier-w/sonoscope/internal/config"
)

// sensitivityRatio maps a sensitivity onto [0, 1] for the slider.
func sensitivityRatio(s float64) float64 {
	r := (s - config.MinSensitivity) / (config.MaxSensitivity - config.MinSensitivity)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func renderSensitivity(bar progress.Model, s float64) string {
	return fmt.Sprintf("sens %s %.1fx", bar.ViewAs(sensitivityRatio(s)), s)
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100))
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
}
