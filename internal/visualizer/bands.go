package visualizer

import (
	"strings"

	"github.com/olivier-w/sonoscope/internal/analysis"
)

var barChars = []rune(" ▁▂▃▄▅▆▇█")

// BandMeter renders the eight log bands as vertical bars.
type BandMeter struct {
	levels *springs
	output string
}

// NewBandMeter creates a band meter eased at the given frame rate.
func NewBandMeter(fps int) *BandMeter {
	return &BandMeter{levels: newSprings(analysis.BandCount, fps, 8.0, 1.0)}
}

func (b *BandMeter) Name() string { return "bands" }

// Level reports the eased level of band i in [0, 1].
func (b *BandMeter) Level(i int) float64 { return clamp01(b.levels.value(i)) }

func (b *BandMeter) Update(f Frame, width, height int) {
	for i, v := range f.Bands {
		b.levels.step(i, clamp01(v*f.Sensitivity/255))
	}

	if height < 1 {
		height = 1
	}

	colWidth := (width - 2) / analysis.BandCount
	if colWidth < 1 {
		colWidth = 1
	}
	gap := 1
	if colWidth <= 1 {
		gap = 0
	}

	var sb strings.Builder
	state := newANSIState()
	for row := range height {
		if row > 0 {
			state.reset(&sb)
			sb.WriteByte('\n')
		}
		rowFromBottom := float64(height - 1 - row)
		for i := range analysis.BandCount {
			if i > 0 && gap > 0 {
				state.reset(&sb)
				sb.WriteByte(' ')
			}
			level := b.Level(i) * float64(height)
			charIdx := 0
			if level > rowFromBottom+1 {
				charIdx = len(barChars) - 1
			} else if level > rowFromBottom {
				charIdx = int((level - rowFromBottom) * float64(len(barChars)-1))
			}
			ch := barChars[charIdx]
			if ch != ' ' {
				state.set(&sb, heatColor((rowFromBottom+1)/float64(height)))
			}
			for range colWidth - gap {
				sb.WriteRune(ch)
			}
		}
	}
	state.reset(&sb)
	b.output = sb.String()
}

func (b *BandMeter) View() string {
	return b.output
}
