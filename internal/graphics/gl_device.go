package graphics

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// GLDevice renders through OpenGL 4.1 core. Create it after the context is current.
type GLDevice struct {
	programs [2]*Shader
	current  *Shader
	projView mgl32.Mat4
}

// NewGLDevice initializes GL bindings, compiles the shaders and sets the fixed state.
func NewGLDevice() (*GLDevice, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	chunks, err := NewShader(shaderFS, "shaders/chunks.vert", "shaders/chunks.frag")
	if err != nil {
		return nil, err
	}
	batch, err := NewShader(shaderFS, "shaders/batch.vert", "shaders/batch.frag")
	if err != nil {
		chunks.Delete()
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	d := &GLDevice{programs: [2]*Shader{chunks, batch}, projView: mgl32.Ident4()}
	d.UseProgram(ProgramChunks)
	return d, nil
}

// Clear clears color and depth buffers.
func (d *GLDevice) Clear(r, g, b float32) {
	gl.ClearColor(r, g, b, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Viewport sets the GL viewport.
func (d *GLDevice) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Dispose deletes the shader programs.
func (d *GLDevice) Dispose() {
	for _, p := range d.programs {
		p.Delete()
	}
}

func (d *GLDevice) UseProgram(p Program) {
	s := d.programs[p]
	s.Use()
	d.current = s
	s.SetInt("u_texture0", 0)
	s.SetMatrix4("u_projview", d.projView)
}

func (d *GLDevice) BindTexture(t Texture) {
	gl.ActiveTexture(gl.TEXTURE0)
	if t == nil {
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, t.ID())
}

func (d *GLDevice) SetProjView(m mgl32.Mat4) {
	d.projView = m
	d.current.SetMatrix4("u_projview", m)
}

func (d *GLDevice) SetModel(m mgl32.Mat4)     { d.current.SetMatrix4("u_model", m) }
func (d *GLDevice) SetAlphaClip(enabled bool) { d.current.SetBool("u_alphaClip", enabled) }
func (d *GLDevice) SetDense(enabled bool)     { d.current.SetBool("u_dense", enabled) }

type glTexture struct {
	id   uint32
	w, h int
}

func (t *glTexture) ID() uint32       { return t.id }
func (t *glTexture) Size() (int, int) { return t.w, t.h }
func (t *glTexture) Delete()          { gl.DeleteTextures(1, &t.id) }

func (d *GLDevice) NewTexture(img *image.RGBA) Texture {
	size := img.Rect.Size()
	return &glTexture{id: uploadTexture(img), w: size.X, h: size.Y}
}

type glMesh struct {
	vao, vbo uint32
	count    int
}

func (m *glMesh) VertexCount() int { return m.count }

func (m *glMesh) Draw() {
	if m.count == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(m.count))
	gl.BindVertexArray(0)
}

func (m *glMesh) Delete() {
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
}

func (d *GLDevice) NewChunkMesh(vertices []ChunkVertex) Mesh {
	m := &glMesh{count: len(vertices)}
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	if len(vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*ChunkVertexSize, gl.Ptr(vertices), gl.STATIC_DRAW)
	}
	const stride = ChunkVertexSize
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 4, gl.UNSIGNED_BYTE, true, stride, 5*4)
	gl.BindVertexArray(0)
	return m
}

type glBatchMesh struct {
	glMesh
	capacity int
}

func (d *GLDevice) NewBatchMesh(capacity int) BatchMesh {
	m := &glBatchMesh{capacity: capacity}
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, capacity*BatchVertexSize, nil, gl.DYNAMIC_DRAW)
	const stride = BatchVertexSize
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, 5*4)
	gl.BindVertexArray(0)
	return m
}

func (m *glBatchMesh) Reload(vertices []BatchVertex) {
	m.count = len(vertices)
	if m.count == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	if m.count > m.capacity {
		m.capacity = m.count
		gl.BufferData(gl.ARRAY_BUFFER, m.capacity*BatchVertexSize, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
		return
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, m.count*BatchVertexSize, gl.Ptr(vertices))
}
