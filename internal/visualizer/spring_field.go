package visualizer

import "github.com/charmbracelet/harmonica"

// springs eases a fixed number of values toward per-tick targets.
type springs struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSprings(n, fps int, frequency, damping float64) *springs {
	if fps < 1 {
		fps = 30
	}
	return &springs{
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
		pos:    make([]float64, n),
		vel:    make([]float64, n),
	}
}

// set places value i at v with no velocity.
func (s *springs) set(i int, v float64) {
	s.pos[i] = v
	s.vel[i] = 0
}

func (s *springs) step(i int, target float64) float64 {
	s.pos[i], s.vel[i] = s.spring.Update(s.pos[i], s.vel[i], target)
	return s.pos[i]
}

func (s *springs) value(i int) float64 { return s.pos[i] }
