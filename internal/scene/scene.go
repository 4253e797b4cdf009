package scene

import (
	"math"

	"github.com/olivier-w/sonoscope/internal/analysis"
)

// Scene is everything the 3D view draws.
type Scene struct {
	Field  *Field
	Mesh   *Mesh
	Levels Levels
}

// New creates a scene with n particles.
func New(n int, seed int64) *Scene {
	return &Scene{
		Field: NewField(n, seed),
		Mesh:  NewMesh(),
	}
}

// Step advances the scene to elapsed time t (seconds) from the latest bands.
func (s *Scene) Step(b analysis.Bands, sensitivity, t float64) {
	s.Levels = NewLevels(b, sensitivity)
	s.Field.Update(b, sensitivity, t)
	s.Mesh.Update(s.Levels, t)
}

// Camera is a perspective camera orbiting the origin on the XZ plane.
type Camera struct {
	Distance float64
	FOV      float64 // vertical field of view, radians
	Yaw      float64
	Pitch    float64
}

// DefaultCamera frames the full particle field.
func DefaultCamera() Camera {
	return Camera{Distance: 34, FOV: math.Pi / 3, Pitch: 0.25}
}

// Project maps v to normalised screen coordinates in roughly [-1, 1] (+y up) and
// returns its depth. ok is false for points behind the near plane.
func (c Camera) Project(v Vec3) (x, y, depth float64, ok bool) {
	v = v.RotateY(-c.Yaw).RotateX(c.Pitch)
	depth = c.Distance - v.Z
	if depth < 0.1 {
		return 0, 0, depth, false
	}
	f := 1 / math.Tan(c.FOV/2)
	return v.X * f / depth, v.Y * f / depth, depth, true
}
