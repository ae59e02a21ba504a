package blockwraps

import (
	"cmp"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"mini-vox/internal/content"
	"mini-vox/internal/graphics"
	"mini-vox/internal/graphics/renderer"
	"mini-vox/internal/metrics"
	"mini-vox/internal/profiling"
	"mini-vox/internal/world"
)

const batchCapacity = 1024

// wraps are drawn slightly larger than the block to avoid z-fighting
const inflate = 1.01

// all culling and dirty bits set
const allBits uint8 = 0xFF

var white = mgl32.Vec3{1, 1, 1}

// Wrapper is a textured box drawn over a world block.
type Wrapper struct {
	Position     [3]int
	TextureFaces [world.FaceCount]string
	Tints        [world.FaceCount]mgl32.Vec3
	Emission     float32

	// CullingBits marks enabled faces, DirtySides faces whose textures
	// must be resolved again before drawing.
	CullingBits uint8
	DirtySides  uint8

	id         uint64
	texRegions [world.FaceCount]graphics.TextureRegion
	uvRegions  [world.FaceCount]graphics.UVRegion
	modelType  content.ModelType
}

// ID returns the wrapper's handle.
func (w *Wrapper) ID() uint64 { return w.id }

// ModelType returns the block model the cache was last resolved against.
func (w *Wrapper) ModelType() content.ModelType { return w.modelType }

type orderEntry struct {
	key     uint32
	seq     uint64
	texture graphics.Texture
	wrapper *Wrapper
}

func textureKey(t graphics.Texture) uint32 {
	if t == nil {
		return 0
	}
	return t.ID()
}

// Renderer owns the block wrappers and draws them grouped by texture.
// Not safe for concurrent use.
type Renderer struct {
	dev      graphics.Device
	chunks   *world.Chunks
	idx      *content.Indices
	textures graphics.TextureResolver
	batch    *graphics.MainBatch
	metrics  *metrics.Render

	wrappers    map[uint64]*Wrapper
	nextWrapper uint64
	// render order sorted by texture id, then insertion
	order   []orderEntry
	nextSeq uint64
	dirty   []uint64
}

var _ renderer.Renderable = (*Renderer)(nil)

// New creates a wrap renderer. A nil m records into unregistered collectors.
func New(
	dev graphics.Device,
	chunks *world.Chunks,
	idx *content.Indices,
	textures graphics.TextureResolver,
	m *metrics.Render,
) *Renderer {
	if m == nil {
		m = metrics.NewRender(nil)
	}
	return &Renderer{
		dev:         dev,
		chunks:      chunks,
		idx:         idx,
		textures:    textures,
		batch:       graphics.NewMainBatch(dev, batchCapacity),
		metrics:     m,
		wrappers:    make(map[uint64]*Wrapper),
		nextWrapper: 1,
	}
}

// Add wraps the block at position with texture on all faces and returns the
// new wrapper's id. Ids are never reused.
func (r *Renderer) Add(position [3]int, texture string, tint mgl32.Vec3, emission float32) uint64 {
	id := r.nextWrapper
	r.nextWrapper++
	w := &Wrapper{
		Position:    position,
		Emission:    emission,
		CullingBits: allBits,
		DirtySides:  allBits,
		id:          id,
	}
	for i := range world.FaceCount {
		w.TextureFaces[i] = texture
		w.Tints[i] = tint
	}
	r.wrappers[id] = w
	r.metrics.Wrappers.Set(float64(len(r.wrappers)))
	return id
}

// Get returns the wrapper or nil.
func (r *Renderer) Get(id uint64) *Wrapper {
	return r.wrappers[id]
}

// Remove deletes the wrapper and its render order entries.
func (r *Renderer) Remove(id uint64) {
	w, ok := r.wrappers[id]
	if !ok {
		return
	}
	delete(r.wrappers, id)
	r.purge(w)
	r.metrics.Wrappers.Set(float64(len(r.wrappers)))
}

// Len returns the number of live wrappers.
func (r *Renderer) Len() int { return len(r.wrappers) }

// SetPosition moves the wrapper. It reports false for an unknown id.
func (r *Renderer) SetPosition(id uint64, pos [3]int) bool {
	w := r.wrappers[id]
	if w == nil {
		return false
	}
	w.Position = pos
	return true
}

// SetTexture sets texture on every face.
func (r *Renderer) SetTexture(id uint64, texture string) bool {
	w := r.wrappers[id]
	if w == nil {
		return false
	}
	for i := range world.FaceCount {
		w.TextureFaces[i] = texture
	}
	w.DirtySides = allBits
	return true
}

// SetFaces sets per-face textures. A nil entry disables the face, a texture
// enables it.
func (r *Renderer) SetFaces(id uint64, faces [world.FaceCount]*string) bool {
	w := r.wrappers[id]
	if w == nil {
		return false
	}
	for i, tex := range faces {
		bit := uint8(1) << i
		if tex == nil {
			if w.CullingBits&bit != 0 {
				w.CullingBits &^= bit
				w.TextureFaces[i] = ""
				w.DirtySides |= bit
			}
			continue
		}
		if w.CullingBits&bit == 0 || w.TextureFaces[i] != *tex {
			w.CullingBits |= bit
			w.TextureFaces[i] = *tex
			w.DirtySides |= bit
		}
	}
	return true
}

// SetTints sets per-face tints, nil entries reset to white.
func (r *Renderer) SetTints(id uint64, tints [world.FaceCount]*mgl32.Vec3) bool {
	w := r.wrappers[id]
	if w == nil {
		return false
	}
	for i, t := range tints {
		if t == nil {
			w.Tints[i] = white
		} else {
			w.Tints[i] = *t
		}
	}
	w.DirtySides = allBits
	return true
}

func (r *Renderer) purge(w *Wrapper) {
	r.order = slices.DeleteFunc(r.order, func(e orderEntry) bool {
		return e.wrapper == w
	})
}

func (r *Renderer) insert(t graphics.Texture, w *Wrapper) {
	e := orderEntry{key: textureKey(t), seq: r.nextSeq, texture: t, wrapper: w}
	r.nextSeq++
	i, _ := slices.BinarySearchFunc(r.order, e, func(a, b orderEntry) int {
		if c := cmp.Compare(a.key, b.key); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	r.order = slices.Insert(r.order, i, e)
}

// refreshWrapper resolves the enabled faces' textures, re-indexes the
// wrapper once per distinct texture and resolves its model.
func (r *Renderer) refreshWrapper(w *Wrapper) {
	r.purge(w)
	var indexed []graphics.Texture
	for i := range world.FaceCount {
		if w.CullingBits&(1<<i) == 0 {
			continue
		}
		tr := r.textures.Resolve(w.TextureFaces[i])
		w.texRegions[i] = tr
		w.uvRegions[i] = tr.Region
		if !slices.Contains(indexed, tr.Texture) {
			indexed = append(indexed, tr.Texture)
			r.insert(tr.Texture, w)
		}
	}
	w.DirtySides = 0

	vox := r.chunks.Get(w.Position[0], w.Position[1], w.Position[2])
	if vox == nil || vox.IsVoid() {
		return
	}
	r.refreshModel(w, *vox)
}

// refreshModel resolves the model under the wrapper and fits the UV regions to it.
func (r *Renderer) refreshModel(w *Wrapper, vox world.Voxel) {
	def := r.idx.Require(vox.ID)
	w.modelType = def.ModelFor(vox.State.Userbits())
	for i := range world.FaceCount {
		w.uvRegions[i] = w.texRegions[i].Region
	}
	if w.modelType != content.ModelAABB {
		return
	}
	size := def.Hitbox(vox.State).Size()
	for i := range world.FaceCount {
		cf := &graphics.CubeFaces[i]
		w.uvRegions[i].Scale(size[cf.RightAxis], size[cf.UpAxis])
	}
}

// draw emits the faces of w that use texture.
func (r *Renderer) draw(w *Wrapper, texture graphics.Texture) {
	if w.CullingBits == 0 {
		return
	}
	bits := w.CullingBits
	for i := range world.FaceCount {
		if bits&(1<<i) != 0 && w.texRegions[i].Texture != texture {
			bits &^= 1 << i
		}
	}
	if bits == 0 {
		return
	}

	vox := r.chunks.Get(w.Position[0], w.Position[1], w.Position[2])
	if vox == nil || vox.IsVoid() {
		return
	}
	def := r.idx.Require(vox.ID)
	if w.modelType != def.ModelFor(vox.State.Userbits()) {
		r.refreshModel(w, *vox)
	}

	light := mgl32.Vec4{1, 1, 1, 0}
	if w.Emission < 1 {
		light = r.chunks.GetLight(w.Position[0], w.Position[1], w.Position[2]).Normalized()
		light[0] += w.Emission
		light[1] += w.Emission
		light[2] += w.Emission
	}
	pos := mgl32.Vec3{float32(w.Position[0]), float32(w.Position[1]), float32(w.Position[2])}

	switch w.modelType {
	case content.ModelBlock:
		r.batch.Cube(
			pos.Add(mgl32.Vec3{0.5, 0.5, 0.5}),
			mgl32.Vec3{inflate, inflate, inflate},
			&w.uvRegions, light, &w.Tints, w.Emission, bits,
		)
	case content.ModelAABB:
		hb := def.Hitbox(vox.State)
		r.batch.Cube(
			pos.Add(hb.Center()),
			hb.Size().Mul(inflate),
			&w.uvRegions, light, &w.Tints, w.Emission, bits,
		)
	}
}

// Draw resolves dirty wrappers and draws all of them, one texture group at a time.
func (r *Renderer) Draw(ctx renderer.RenderContext) {
	defer profiling.Track("blockwraps.draw")()
	// refresh in id order so insertion order within a texture group is stable
	r.dirty = r.dirty[:0]
	for id, w := range r.wrappers {
		if w.DirtySides != 0 {
			r.dirty = append(r.dirty, id)
		}
	}
	slices.Sort(r.dirty)
	for _, id := range r.dirty {
		r.refreshWrapper(r.wrappers[id])
	}
	if len(r.order) == 0 {
		return
	}

	r.dev.UseProgram(graphics.ProgramBatch)
	r.dev.SetProjView(ctx.ProjView)
	r.dev.SetModel(mgl32.Ident4())
	r.dev.SetAlphaClip(false)

	r.batch.Begin()
	for _, e := range r.order {
		r.batch.SetTexture(e.texture)
		r.draw(e.wrapper, e.texture)
	}
	r.batch.Flush()
}

func (r *Renderer) Init() error { return nil }

func (r *Renderer) Render(ctx renderer.RenderContext) { r.Draw(ctx) }

func (r *Renderer) SetViewport(width, height int) {}

// Dispose drops every wrapper.
func (r *Renderer) Dispose() {
	clear(r.wrappers)
	r.order = nil
	r.metrics.Wrappers.Set(0)
}
