package visualizer

import (
	"fmt"
	"math"
	"strings"
)

// VUMeter renders the input RMS level with peak hold.
type VUMeter struct {
	rms    float64
	peak   float64
	output string
}

// NewVUMeter creates a new VU meter visualizer.
func NewVUMeter() *VUMeter {
	return &VUMeter{}
}

func (v *VUMeter) Name() string { return "vu meter" }

// Level reports the smoothed meter level in [0, 1].
func (v *VUMeter) Level() float64 { return rmsToLevel(v.rms) }

func (v *VUMeter) Update(f Frame, width, height int) {
	rms := f.Volume * f.Sensitivity

	const attack = 0.6
	const release = 0.15
	if rms > v.rms {
		v.rms = v.rms*(1-attack) + rms*attack
	} else {
		v.rms = v.rms*(1-release) + rms*release
	}

	const peakDecay = 0.02
	if v.rms > v.peak {
		v.peak = v.rms
	} else {
		v.peak = math.Max(0, v.peak-peakDecay)
	}

	barWidth := width - 6
	if barWidth < 10 {
		barWidth = 10
	}

	var sb strings.Builder
	if height >= 3 {
		sb.WriteString(strings.Repeat("\n", (height-1)/2))
	}
	fmt.Fprintf(&sb, " ♪  %s", renderVUBar(v.rms, v.peak, barWidth))
	v.output = sb.String()
}

// rmsToLevel converts an RMS value to a 0.0–1.0 bar level on a dB scale.
func rmsToLevel(rms float64) float64 {
	const dbFloor = -40.0
	if rms < 1e-6 {
		return 0
	}
	db := 20.0 * math.Log10(rms)
	if db < dbFloor {
		return 0
	}
	return clamp01((db - dbFloor) / -dbFloor)
}

func renderVUBar(rms, peak float64, width int) string {
	filled := int(rmsToLevel(rms) * float64(width))
	peakPos := int(rmsToLevel(peak) * float64(width))
	if peakPos >= width {
		peakPos = width - 1
	}

	bar := make([]rune, width)
	for i := range width {
		switch {
		case i < filled:
			bar[i] = '█'
		case i == peakPos && peakPos > 0:
			bar[i] = '│'
		default:
			bar[i] = '─'
		}
	}

	state := newANSIState()
	if !state.colored() {
		return string(bar)
	}

	var sb strings.Builder
	for i, ch := range bar {
		switch {
		case ch == '│':
			state.set(&sb, colorRGB{R: 255, G: 252, B: 210})
		case i < width*6/10:
			state.set(&sb, colorRGB{R: 60, G: 224, B: 116})
		case i < width*8/10:
			state.set(&sb, colorRGB{R: 240, G: 198, B: 72})
		default:
			state.set(&sb, colorRGB{R: 242, G: 96, B: 86})
		}
		sb.WriteRune(ch)
	}
	state.reset(&sb)
	return sb.String()
}

func (v *VUMeter) View() string {
	return v.output
}
