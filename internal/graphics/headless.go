package graphics

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// DrawCall is one draw recorded by HeadlessDevice.
type DrawCall struct {
	Program   Program
	Mesh      *HeadlessMesh
	Texture   Texture
	Model     mgl32.Mat4
	AlphaClip bool
	Dense     bool
	// Batch holds a copy of the vertices a batch mesh drew.
	Batch []BatchVertex
}

// HeadlessMesh keeps a CPU copy of its vertices.
type HeadlessMesh struct {
	ID       int
	Vertices []ChunkVertex
	Batch    []BatchVertex
	Deleted  bool

	dev *HeadlessDevice
}

func (m *HeadlessMesh) VertexCount() int {
	if m.Batch != nil {
		return len(m.Batch)
	}
	return len(m.Vertices)
}

func (m *HeadlessMesh) Draw() {
	if m.VertexCount() == 0 {
		return
	}
	d := m.dev
	call := DrawCall{
		Program:   d.program,
		Mesh:      m,
		Texture:   d.texture,
		Model:     d.model,
		AlphaClip: d.alphaClip,
		Dense:     d.dense,
	}
	if m.Batch != nil {
		call.Batch = append([]BatchVertex(nil), m.Batch...)
	}
	d.Draws = append(d.Draws, call)
}

func (m *HeadlessMesh) Delete() { m.Deleted = true }

func (m *HeadlessMesh) Reload(vertices []BatchVertex) {
	m.Batch = append(m.Batch[:0], vertices...)
}

type headlessTexture struct {
	id   uint32
	w, h int
}

func (t *headlessTexture) ID() uint32       { return t.id }
func (t *headlessTexture) Size() (int, int) { return t.w, t.h }
func (t *headlessTexture) Delete()          {}

// HeadlessDevice records meshes and draw calls without a GPU.
// Used by tests and the viewer's -headless mode.
type HeadlessDevice struct {
	Meshes []*HeadlessMesh
	Draws  []DrawCall

	program   Program
	texture   Texture
	model     mgl32.Mat4
	projView  mgl32.Mat4
	alphaClip bool
	dense     bool
	nextTex   uint32
}

func NewHeadlessDevice() *HeadlessDevice {
	return &HeadlessDevice{model: mgl32.Ident4(), projView: mgl32.Ident4()}
}

// Reset forgets recorded draws.
func (d *HeadlessDevice) Reset() { d.Draws = d.Draws[:0] }

// LiveMeshes counts meshes not yet deleted.
func (d *HeadlessDevice) LiveMeshes() int {
	n := 0
	for _, m := range d.Meshes {
		if !m.Deleted {
			n++
		}
	}
	return n
}

func (d *HeadlessDevice) NewChunkMesh(vertices []ChunkVertex) Mesh {
	m := &HeadlessMesh{
		ID:       len(d.Meshes),
		Vertices: append([]ChunkVertex(nil), vertices...),
		dev:      d,
	}
	d.Meshes = append(d.Meshes, m)
	return m
}

func (d *HeadlessDevice) NewBatchMesh(capacity int) BatchMesh {
	m := &HeadlessMesh{ID: len(d.Meshes), Batch: make([]BatchVertex, 0, capacity), dev: d}
	d.Meshes = append(d.Meshes, m)
	return m
}

func (d *HeadlessDevice) NewTexture(img *image.RGBA) Texture {
	d.nextTex++
	size := img.Rect.Size()
	return &headlessTexture{id: d.nextTex, w: size.X, h: size.Y}
}

func (d *HeadlessDevice) UseProgram(p Program)      { d.program = p }
func (d *HeadlessDevice) BindTexture(t Texture)     { d.texture = t }
func (d *HeadlessDevice) SetProjView(m mgl32.Mat4)  { d.projView = m }
func (d *HeadlessDevice) SetModel(m mgl32.Mat4)     { d.model = m }
func (d *HeadlessDevice) SetAlphaClip(enabled bool) { d.alphaClip = enabled }
func (d *HeadlessDevice) SetDense(enabled bool)     { d.dense = enabled }
