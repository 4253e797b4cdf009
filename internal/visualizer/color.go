package visualizer

import (
	"image/color"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"github.com/olivier-w/sonoscope/internal/scene"
)

type colorRGB struct {
	R uint8
	G uint8
	B uint8
}

func (c colorRGB) key() uint32 { return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B) }

func (c colorRGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

var (
	profileOnce sync.Once
	profile     termenv.Profile
	sequences   sync.Map // profile<<24 | rgb -> escape sequence
)

// outputProfile is the colour depth of stdout. NO_COLOR and dumb terminals get Ascii.
func outputProfile() termenv.Profile {
	profileOnce.Do(func() {
		profile = termenv.EnvColorProfile()
	})
	return profile
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func mix(a, b colorRGB, t float64) colorRGB {
	ch := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return colorRGB{R: ch(a.R, b.R), G: ch(a.G, b.G), B: ch(a.B, b.B)}
}

// fromScene converts a linear scene colour, scaled by brightness, to 8-bit RGB.
func fromScene(c scene.Color, brightness float64) colorRGB {
	b := clamp01(brightness)
	return colorRGB{
		R: uint8(clamp01(c.R*b) * 255),
		G: uint8(clamp01(c.G*b) * 255),
		B: uint8(clamp01(c.B*b) * 255),
	}
}

var heatStops = [...]colorRGB{
	{R: 16, G: 25, B: 70},
	{R: 0, G: 174, B: 255},
	{R: 20, G: 255, B: 161},
	{R: 255, G: 230, B: 92},
	{R: 255, G: 80, B: 60},
}

// heatColor maps a band level onto the bars gradient, deep blue through red.
func heatColor(t float64) colorRGB {
	pos := clamp01(t) * float64(len(heatStops)-1)
	i := min(int(pos), len(heatStops)-2)
	return mix(heatStops[i], heatStops[i+1], pos-float64(i))
}

// ansiState emits a foreground sequence only when the colour changes.
type ansiState struct {
	profile termenv.Profile
	current uint32
	active  bool
}

func newANSIState() ansiState {
	return ansiState{profile: outputProfile()}
}

func (s *ansiState) colored() bool { return s.profile != termenv.Ascii }

func (s *ansiState) set(sb *strings.Builder, c colorRGB) {
	if !s.colored() || (s.active && s.current == c.key()) {
		return
	}
	sb.WriteString(sequence(s.profile, c))
	s.current = c.key()
	s.active = true
}

func (s *ansiState) reset(sb *strings.Builder) {
	if !s.active {
		return
	}
	sb.WriteString(termenv.CSI + termenv.ResetSeq + "m")
	s.active = false
}

func sequence(p termenv.Profile, c colorRGB) string {
	k := uint32(p)<<24 | c.key()
	if seq, ok := sequences.Load(k); ok {
		return seq.(string)
	}
	seq := ""
	if code := p.FromColor(c).Sequence(false); code != "" {
		seq = termenv.CSI + code + "m"
	}
	sequences.Store(k, seq)
	return seq
}
