package visualizer

import (
	"math"

	"github.com/olivier-w/sonoscope/internal/scene"
)

const (
	cameraNear    = 34.0
	cameraPull    = 10.0
	cameraOrbit   = 0.05 // radians per second
	meshBrightMin = 0.5
)

// SceneView draws the particle field and mesh with a perspective camera.
type SceneView struct {
	canvas *Canvas
	camera scene.Camera
	ease   *springs
	output string
}

// NewSceneView creates the 3D view.
func NewSceneView(fps int) *SceneView {
	v := &SceneView{
		canvas: NewCanvas(1, 1),
		camera: scene.DefaultCamera(),
		ease:   newSprings(1, fps, 3.0, 0.9),
	}
	v.ease.set(0, cameraNear)
	return v
}

func (v *SceneView) Name() string { return "scene" }

// Distance reports the current eased camera distance.
func (v *SceneView) Distance() float64 { return v.ease.value(0) }

func (v *SceneView) Update(f Frame, width, height int) {
	v.canvas.Resize(width, height)
	if f.Scene == nil {
		v.output = v.canvas.String()
		return
	}

	// Louder passages pull the camera in.
	target := cameraNear - cameraPull*clamp01(f.Scene.Levels.Mean)
	v.camera.Distance = v.ease.step(0, target)
	v.camera.Yaw = f.Elapsed.Seconds() * cameraOrbit

	dotW, dotH := v.canvas.DotSize()
	scale := math.Min(float64(dotW), float64(dotH)) / 2
	cx, cy := float64(dotW)/2, float64(dotH)/2

	plot := func(p scene.Vec3, col colorRGB) {
		x, y, depth, ok := v.camera.Project(p)
		if !ok {
			return
		}
		v.canvas.Set(int(cx+x*scale), int(cy-y*scale), depth, col)
	}

	for _, p := range f.Scene.Field.Particles {
		// Brighter particles read as larger on a dot grid.
		plot(p.Pos, fromScene(p.Color, 0.45+p.Size*2))
	}

	m := f.Scene.Mesh
	meshColor := fromScene(m.Color, meshBrightMin+(1-meshBrightMin)*m.Emissive)
	for _, p := range m.Points {
		plot(m.Transform(p), meshColor)
	}

	v.output = v.canvas.String()
}

func (v *SceneView) View() string {
	return v.output
}
