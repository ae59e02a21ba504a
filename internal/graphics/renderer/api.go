package renderer

import (
	"mini-vox/internal/graphics"
	"mini-vox/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderContext provides shared context for all renderables
type RenderContext struct {
	Device   graphics.Device
	Camera   *graphics.Camera
	Frustum  *graphics.Frustum
	Chunks   *world.Chunks
	DT       float64
	ProjView mgl32.Mat4
}

// Renderable interface defines the lifecycle for renderable features
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
	SetViewport(width, height int)
}
