package blockwraps

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-vox/internal/content"
	"mini-vox/internal/graphics"
	"mini-vox/internal/graphics/renderer"
	"mini-vox/internal/world"
)

type fixture struct {
	t       *testing.T
	dev     *graphics.HeadlessDevice
	idx     *content.Indices
	atlas   *graphics.Atlas
	overlay graphics.Texture
	chunk   *world.Chunk
	r       *Renderer
	ctx     renderer.RenderContext
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := graphics.NewHeadlessDevice()
	idx := content.Default()
	b := graphics.NewAtlasBuilder(4)
	for _, name := range idx.Textures() {
		b.AddColor(name, color.RGBA{200, 200, 200, 255})
	}
	atlas := b.Build(dev)
	overlay := dev.NewTexture(image.NewRGBA(image.Rect(0, 0, 2, 2)))

	textures := graphics.NewTextures("blocks")
	textures.AddAtlas("blocks", atlas)
	textures.AddTexture("overlay", overlay)

	chunks := world.NewChunks(3, 3, -1, -1)
	chunk := world.NewChunk(0, 0)
	require.True(t, chunks.Put(chunk))

	f := &fixture{
		t:       t,
		dev:     dev,
		idx:     idx,
		atlas:   atlas,
		overlay: overlay,
		chunk:   chunk,
		r:       New(dev, chunks, idx, textures, nil),
		ctx:     renderer.RenderContext{ProjView: mgl32.Ident4()},
	}
	f.set(0, 64, 0, "stone")
	return f
}

func (f *fixture) set(x, y, z int, name string) {
	def, err := f.idx.ByName(name)
	require.NoError(f.t, err)
	f.chunk.Set(x, y, z, world.Voxel{ID: def.ID})
}

func (f *fixture) draw() []graphics.DrawCall {
	f.dev.Reset()
	f.r.Draw(f.ctx)
	return f.dev.Draws
}

func TestAddGetRemove(t *testing.T) {
	f := newFixture(t)
	id := f.r.Add([3]int{0, 64, 0}, "stone", mgl32.Vec3{1, 1, 1}, 0)

	w := f.r.Get(id)
	require.NotNil(t, w)
	assert.Equal(t, id, w.ID())
	assert.Equal(t, uint8(0xFF), w.CullingBits)
	for _, tex := range w.TextureFaces {
		assert.Equal(t, "stone", tex)
	}
	assert.Equal(t, 1, f.r.Len())

	f.r.Remove(id)
	assert.Nil(t, f.r.Get(id))
	assert.Zero(t, f.r.Len())
	f.r.Remove(id)
}

func TestIDsAreNeverReused(t *testing.T) {
	f := newFixture(t)
	seen := map[uint64]bool{}
	for i := range 20 {
		id := f.r.Add([3]int{0, 64, 0}, "stone", mgl32.Vec3{1, 1, 1}, 0)
		require.False(t, seen[id])
		seen[id] = true
		if i%3 == 0 {
			f.r.Remove(id)
		}
	}
	assert.NotContains(t, seen, uint64(0))
}

func TestDrawWrappedBlock(t *testing.T) {
	f := newFixture(t)
	f.r.Add([3]int{0, 64, 0}, "stone", mgl32.Vec3{1, 1, 1}, 0)

	draws := f.draw()
	require.Len(t, draws, 1)
	assert.Equal(t, graphics.ProgramBatch, draws[0].Program)
	assert.Equal(t, f.atlas.Texture(), draws[0].Texture)
	require.Len(t, draws[0].Batch, 36)
	for _, v := range draws[0].Batch {
		assert.InDelta(t, 0.5, v.Position.X(), 0.506)
		assert.InDelta(t, 64.5, v.Position.Y(), 0.506)
		assert.InDelta(t, 0.5, v.Position.Z(), 0.506)
	}
}

func TestFullEmission(t *testing.T) {
	f := newFixture(t)
	f.r.Add([3]int{0, 64, 0}, "stone", mgl32.Vec3{1, 1, 1}, 1)
	draws := f.draw()
	require.Len(t, draws, 1)
	for _, v := range draws[0].Batch {
		assert.Equal(t, mgl32.Vec4{1, 1, 1, 0}, v.Color)
	}
}

func TestDrawGroupsByTexture(t *testing.T) {
	f := newFixture(t)
	f.set(1, 64, 0, "stone")
	f.set(2, 64, 0, "stone")
	f.r.Add([3]int{0, 64, 0}, "stone", mgl32.Vec3{1, 1, 1}, 0)
	f.r.Add([3]int{1, 64, 0}, "overlay", mgl32.Vec3{1, 1, 1}, 0)
	f.r.Add([3]int{2, 64, 0}, "dirt", mgl32.Vec3{1, 1, 1}, 0)

	draws := f.draw()
	require.Len(t, draws, 2)
	assert.Less(t, draws[0].Texture.ID(), draws[1].Texture.ID())
	assert.Equal(t, f.atlas.Texture(), draws[0].Texture)
	assert.Len(t, draws[0].Batch, 72)
	assert.Equal(t, f.overlay, draws[1].Texture)
	assert.Len(t, draws[1].Batch, 36)
}

func TestRemovePurgesRenderOrder(t *testing.T) {
	f := newFixture(t)
	a := f.r.Add([3]int{0, 64, 0}, "stone", mgl32.Vec3{1, 1, 1}, 0)
	b := f.r.Add([3]int{0, 64, 0}, "overlay", mgl32.Vec3{1, 1, 1}, 0)
	f.draw()
	require.Len(t, f.r.order, 2)

	w := f.r.Get(a)
	f.r.Remove(a)
	for _, e := range f.r.order {
		assert.NotSame(t, w, e.wrapper)
	}
	require.Len(t, f.r.order, 1)
	assert.Equal(t, b, f.r.order[0].wrapper.ID())
}

func TestRefreshDoesNotDuplicateEntries(t *testing.T) {
	f := newFixture(t)
	id := f.r.Add([3]int{0, 64, 0}, "stone", mgl32.Vec3{1, 1, 1}, 0)
	f.draw()
	f.r.SetTexture(id, "dirt")
	f.draw()
	tint := mgl32.Vec3{1, 0, 0}
	f.r.SetTints(id, [world.FaceCount]*mgl32.Vec3{&tint})
	draws := f.draw()

	assert.Len(t, f.r.order, 1)
	require.Len(t, draws, 1)
	assert.Len(t, draws[0].Batch, 36)
	w := f.r.Get(id)
	assert.Equal(t, tint, w.Tints[0])
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, w.Tints[1])
}

func TestSetFaces(t *testing.T) {
	f := newFixture(t)
	id := f.r.Add([3]int{0, 64, 0}, "stone", mgl32.Vec3{1, 1, 1}, 0)
	stone, overlay := "stone", "overlay"

	require.True(t, f.r.SetFaces(id, [world.FaceCount]*string{nil, &stone, &stone, &stone, &stone, &stone}))
	w := f.r.Get(id)
	assert.Equal(t, uint8(0xFE), w.CullingBits)
	assert.Empty(t, w.TextureFaces[0])
	draws := f.draw()
	require.Len(t, draws, 1)
	assert.Len(t, draws[0].Batch, 30)

	f.r.SetFaces(id, [world.FaceCount]*string{nil, &stone, &stone, &overlay, &stone, &stone})
	draws = f.draw()
	require.Len(t, draws, 2)
	assert.Len(t, draws[0].Batch, 24)
	assert.Equal(t, f.overlay, draws[1].Texture)
	assert.Len(t, draws[1].Batch, 6)
	assert.Len(t, f.r.order, 2)
}

func TestModelChangeRefreshesCache(t *testing.T) {
	f := newFixture(t)
	id := f.r.Add([3]int{0, 64, 0}, "stone", mgl32.Vec3{1, 1, 1}, 0)
	f.draw()
	assert.Equal(t, content.ModelBlock, f.r.Get(id).ModelType())

	f.set(0, 64, 0, "slab")
	draws := f.draw()
	assert.Equal(t, content.ModelAABB, f.r.Get(id).ModelType())
	require.Len(t, draws, 1)
	var top float32
	for _, v := range draws[0].Batch {
		top = max(top, v.Position.Y())
	}
	assert.InDelta(t, 64.5025, top, 1e-4)
}

func TestWrapperOutsideWorldIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.r.Add([3]int{100, 64, 100}, "stone", mgl32.Vec3{1, 1, 1}, 0)
	assert.Empty(t, f.draw())

	f.r.Add([3]int{5, 64, 5}, "stone", mgl32.Vec3{1, 1, 1}, 0)
	// air has no model
	assert.Empty(t, f.draw())
}

func TestMutatorsRejectUnknownID(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.r.SetPosition(42, [3]int{}))
	assert.False(t, f.r.SetTexture(42, "stone"))
	assert.False(t, f.r.SetFaces(42, [world.FaceCount]*string{}))
	assert.False(t, f.r.SetTints(42, [world.FaceCount]*mgl32.Vec3{}))
}

func TestDrawOrderFollowsIDs(t *testing.T) {
	f := newFixture(t)
	var ids []uint64
	for x := range 8 {
		f.set(x, 64, 2, "stone")
		ids = append(ids, f.r.Add([3]int{x, 64, 2}, "stone", white, 0))
	}
	f.draw()

	require.Len(t, f.r.order, len(ids))
	for i, e := range f.r.order {
		assert.Equal(t, ids[i], e.wrapper.ID())
	}
}
