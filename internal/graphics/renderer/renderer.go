package renderer

import (
	"mini-vox/internal/graphics"
	"mini-vox/internal/profiling"
	"mini-vox/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Renderer orchestrates rendering via renderable features
type Renderer struct {
	renderables []Renderable
	device      graphics.Device
	camera      *graphics.Camera
	frustum     *graphics.Frustum

	// FOV transition
	targetFOV  float32
	currentFOV float32
}

// NewRenderer creates a new renderer with the given renderables
func NewRenderer(dev graphics.Device, camera *graphics.Camera, rs ...Renderable) (*Renderer, error) {
	renderer := &Renderer{
		renderables: rs,
		device:      dev,
		camera:      camera,
		frustum:     graphics.NewFrustum(camera.ProjView()),
		targetFOV:   camera.FOV,
		currentFOV:  camera.FOV,
	}

	// Initialize all renderables
	for i, r := range rs {
		if err := r.Init(); err != nil {
			// Dispose the ones already initialized
			for j := i - 1; j >= 0; j-- {
				rs[j].Dispose()
			}
			return nil, err
		}
	}

	return renderer, nil
}

// SetTargetFOV starts a smooth transition of the camera's field of view.
func (r *Renderer) SetTargetFOV(fov float32) {
	r.targetFOV = fov
}

func (r *Renderer) updateFOV(dt float64) {
	transitionSpeed := float32(100.0)
	step := float32(dt) * transitionSpeed
	if r.currentFOV < r.targetFOV {
		r.currentFOV = min(r.currentFOV+step, r.targetFOV)
	} else if r.currentFOV > r.targetFOV {
		r.currentFOV = max(r.currentFOV-step, r.targetFOV)
	}
	r.camera.FOV = r.currentFOV
}

// Render executes the main render loop
func (r *Renderer) Render(chunks *world.Chunks, dt float64) {
	defer profiling.Track("renderer.render")()
	r.updateFOV(dt)

	projView := r.camera.ProjView()
	r.frustum.Update(projView)

	ctx := RenderContext{
		Device:   r.device,
		Camera:   r.camera,
		Frustum:  r.frustum,
		Chunks:   chunks,
		DT:       dt,
		ProjView: projView,
	}

	// Render all features
	for _, renderable := range r.renderables {
		renderable.Render(ctx)
	}
}

// Dispose cleans up all renderables in reverse order
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}

// GetCamera returns the camera instance
func (r *Renderer) GetCamera() *graphics.Camera {
	return r.camera
}

// UpdateViewport updates the camera's viewport dimensions
func (r *Renderer) UpdateViewport(width, height int) {
	r.camera.SetViewport(width, height)
	for _, renderable := range r.renderables {
		renderable.SetViewport(width, height)
	}
}

// Frustum returns the frustum of the last rendered frame.
func (r *Renderer) Frustum() *graphics.Frustum {
	return r.frustum
}

// ProjView returns the current projection-view matrix.
func (r *Renderer) ProjView() mgl32.Mat4 {
	return r.camera.ProjView()
}
