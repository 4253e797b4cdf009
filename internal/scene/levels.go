package scene

import "github.com/olivier-w/sonoscope/internal/analysis"

// Levels are the grouped band intensities for one tick. Values are linear in
// sensitivity and are not clamped; consumers clamp where they need to.
type Levels struct {
	Low  float64 // bands 0-1
	Mid  float64 // bands 2-4
	High float64 // bands 5-7
	Mean float64
}

// NewLevels averages each frequency group, scales by sensitivity and normalises by 255.
func NewLevels(b analysis.Bands, sensitivity float64) Levels {
	scale := sensitivity / 255
	l := Levels{
		Low:  (b[0] + b[1]) / 2 * scale,
		Mid:  (b[2] + b[3] + b[4]) / 3 * scale,
		High: (b[5] + b[6] + b[7]) / 3 * scale,
	}
	l.Mean = (l.Low + l.Mid + l.High) / 3
	return l
}

// VerticalBias is positive when bass outweighs treble, pushing motion towards +Y.
func (l Levels) VerticalBias() float64 {
	if d := l.Low - l.High; d > 0 {
		return d
	}
	return 0
}

// RadialBias is positive when treble outweighs bass, pushing motion outwards.
func (l Levels) RadialBias() float64 {
	if d := l.High - l.Low; d > 0 {
		return d
	}
	return 0
}

// Group names the dominant frequency group.
type Group uint8

const (
	GroupNone Group = iota
	GroupLow
	GroupMid
	GroupHigh
)

// Dominant returns the strongest group, or GroupNone at silence.
func (l Levels) Dominant() Group {
	switch {
	case l.Low == 0 && l.Mid == 0 && l.High == 0:
		return GroupNone
	case l.Low >= l.Mid && l.Low >= l.High:
		return GroupLow
	case l.Mid >= l.High:
		return GroupMid
	default:
		return GroupHigh
	}
}
