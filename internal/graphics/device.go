package graphics

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Program selects the shader used for following draws.
type Program int

const (
	ProgramChunks Program = iota
	ProgramBatch
)

// Texture is a GPU texture.
type Texture interface {
	ID() uint32
	Size() (w, h int)
	Delete()
}

// Mesh is an immutable GPU vertex buffer.
type Mesh interface {
	VertexCount() int
	Draw()
	Delete()
}

// BatchMesh is a streaming vertex buffer refilled by the batch on every flush.
type BatchMesh interface {
	Mesh
	Reload(vertices []BatchVertex)
}

// Device creates GPU resources and sets draw state. All methods must be
// called from the goroutine owning the graphics context.
type Device interface {
	NewChunkMesh(vertices []ChunkVertex) Mesh
	NewBatchMesh(capacity int) BatchMesh
	NewTexture(img *image.RGBA) Texture

	UseProgram(p Program)
	BindTexture(t Texture)
	SetProjView(m mgl32.Mat4)
	SetModel(m mgl32.Mat4)
	SetAlphaClip(enabled bool)
	// SetDense toggles the high-detail shading path for the next draws.
	SetDense(enabled bool)
}
