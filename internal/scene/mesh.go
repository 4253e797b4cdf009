package scene

import "math"

const (
	meshSegments   = 320
	knotMajor      = 2.0
	knotMinor      = 0.8
	meshPulseGain  = 0.6
	RegenThreshold = 0.5
	RegenInterval  = 2.0 // seconds
)

// Mesh is the torus-knot centerpiece.
type Mesh struct {
	Scale    float64
	Rotation Vec3 // radians about each axis
	Emissive float64
	Color    Color
	P, Q     int
	Points   []Vec3 // knot curve in model space

	lastRegen   float64
	generations int
}

// NewMesh builds a (2,3) trefoil knot.
func NewMesh() *Mesh {
	m := &Mesh{Scale: 1, P: 2, Q: 3, lastRegen: math.Inf(-1)}
	m.Points = knotPoints(m.P, m.Q, meshSegments)
	m.Emissive = 0.2
	m.Color = hsv(0, 0.7, 0.5)
	return m
}

// Generations reports how many times the knot geometry has been rebuilt.
func (m *Mesh) Generations() int { return m.generations }

// Update advances the mesh one tick.
func (m *Mesh) Update(lv Levels, t float64) {
	mean := lv.Mean
	m.Scale = 1 + mean*mean*meshPulseGain + math.Sin(t*1.5)*0.05

	switch lv.Dominant() {
	case GroupLow:
		m.Rotation.X += 0.01 + lv.Low*0.04
		m.Rotation.Y += 0.005
	case GroupMid:
		m.Rotation.Y += 0.01 + lv.Mid*0.04
		m.Rotation.Z -= 0.005
	case GroupHigh:
		m.Rotation.Y -= 0.01 + lv.High*0.04
		m.Rotation.Z += 0.01 + lv.High*0.02
	default:
		m.Rotation.Y += 0.003
	}

	level := clamp01(mean)
	m.Emissive = 0.2 + 0.8*level
	m.Color = hsv(t*0.05+level*0.5, 0.7, 0.5+0.5*level)

	if mean > RegenThreshold && t-m.lastRegen >= RegenInterval {
		m.regenerate(level, t)
	}
}

// regenerate picks new knot windings from the current intensity.
func (m *Mesh) regenerate(level, t float64) {
	m.generations++
	p := 2 + int(level*3)
	q := 3 + m.generations%4
	for gcd(p, q) != 1 {
		q++
	}
	m.P, m.Q = p, q
	m.Points = knotPoints(p, q, meshSegments)
	m.lastRegen = t
}

// Transform returns v in world space: scaled, then rotated X, Y, Z.
func (m *Mesh) Transform(v Vec3) Vec3 {
	return v.Scale(m.Scale).RotateX(m.Rotation.X).RotateY(m.Rotation.Y).RotateZ(m.Rotation.Z)
}

func knotPoints(p, q, n int) []Vec3 {
	pts := make([]Vec3, n)
	for i := range pts {
		phi := 2 * math.Pi * float64(i) / float64(n)
		r := knotMajor + knotMinor*math.Cos(float64(q)*phi)
		pts[i] = Vec3{
			X: r * math.Cos(float64(p)*phi),
			Y: r * math.Sin(float64(p)*phi),
			Z: knotMinor * math.Sin(float64(q)*phi),
		}
	}
	return pts
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
