package scene

import (
	"math"
	"math/rand"

	"github.com/olivier-w/sonoscope/internal/analysis"
)

const (
	MaxRadius   = 20.0
	ResetRadius = 10.0
	spawnRadius = 10.0

	breathRate = 0.8
	breathAmp  = 0.02
	pulseGain  = 0.35
	biasGain   = 0.25
	swirlPivot = 0.3
	swirlGain  = 0.08
	baseSpin   = 0.001
	spinGain   = 0.02
)

// Particle is one point of the field.
type Particle struct {
	Pos   Vec3
	Phase float64
	Color Color
	Size  float64
	Level float64 // local audio intensity in [0, 1] from the last update
}

// Field is the audio-reactive particle cloud.
type Field struct {
	Particles []Particle
}

// NewField scatters n particles on random sphere shells of radius [0, 10].
func NewField(n int, seed int64) *Field {
	rng := rand.New(rand.NewSource(seed))
	f := &Field{Particles: make([]Particle, n)}
	for i := range f.Particles {
		z := 2*rng.Float64() - 1
		phi := 2 * math.Pi * rng.Float64()
		ring := math.Sqrt(1 - z*z)
		dir := Vec3{X: ring * math.Cos(phi), Y: z, Z: ring * math.Sin(phi)}
		f.Particles[i] = Particle{
			Pos:   dir.Scale(spawnRadius * rng.Float64()),
			Phase: 2 * math.Pi * rng.Float64(),
		}
		f.Particles[i].paint(0)
	}
	return f
}

// BandIndex maps a radial distance onto a band: the core follows the bass, the
// outer shell the treble.
func BandIndex(radius float64) int {
	idx := int(radius / MaxRadius * analysis.BandCount)
	if idx < 0 {
		return 0
	}
	if idx >= analysis.BandCount {
		return analysis.BandCount - 1
	}
	return idx
}

// Update advances every particle one tick.
func (f *Field) Update(b analysis.Bands, sensitivity, t float64) {
	lv := NewLevels(b, sensitivity)
	vertical := lv.VerticalBias()
	radial := lv.RadialBias()
	swirl := (lv.Mid - swirlPivot) * swirlGain

	for i := range f.Particles {
		p := &f.Particles[i]
		dir := p.Pos.Unit()

		local := clamp01(b[BandIndex(p.Pos.Len())] * sensitivity / 255)
		intensity := local * local * local

		breath := math.Sin(t*breathRate+p.Phase) * breathAmp
		move := dir.Scale(breath + intensity*pulseGain)
		move = move.Add(Vec3{Y: vertical * intensity * biasGain})
		move = move.Add(dir.Scale(radial * intensity * biasGain))

		if h := math.Hypot(p.Pos.X, p.Pos.Z); h > 0 {
			tangent := Vec3{X: -p.Pos.Z / h, Z: p.Pos.X / h}
			move = move.Add(tangent.Scale(swirl * (0.2 + intensity)))
		}

		p.Pos = p.Pos.Add(move).RotateY(baseSpin + spinGain*local*local)
		p.Pos = constrain(p.Pos)
		p.paint(local)
	}
}

// constrain pulls points that escaped MaxRadius back to ResetRadius along their
// current direction.
func constrain(v Vec3) Vec3 {
	if v.Len() > MaxRadius {
		return v.Unit().Scale(ResetRadius)
	}
	return v
}

// paint sets colour and size; every channel grows with local intensity.
func (p *Particle) paint(local float64) {
	p.Level = local
	p.Color = Color{
		R: clamp01(0.25 + 0.75*local),
		G: clamp01(0.35 + 0.45*local*local),
		B: clamp01(0.6 + 0.4*local),
	}
	p.Size = 0.05 + 0.25*local
}
