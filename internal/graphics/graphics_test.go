package graphics

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-vox/internal/world"
)

func TestFrustumBoxVisibility(t *testing.T) {
	cam := NewCamera(800, 600)
	cam.Position = mgl32.Vec3{0, 0, 0}
	cam.Yaw = 0 // looking down +X
	f := NewFrustum(cam.ProjView())

	assert.True(t, f.IsBoxVisible(mgl32.Vec3{10, -1, -1}, mgl32.Vec3{12, 1, 1}))
	assert.False(t, f.IsBoxVisible(mgl32.Vec3{-12, -1, -1}, mgl32.Vec3{-10, 1, 1}))
	assert.False(t, f.IsBoxVisible(mgl32.Vec3{2000, -1, -1}, mgl32.Vec3{2001, 1, 1}))
}

func TestUVRegionScale(t *testing.T) {
	r := UVRegion{0, 0, 1, 1}
	r.Scale(0.5, 1)
	assert.InDelta(t, 0.25, r.U1, 1e-6)
	assert.InDelta(t, 0.75, r.U2, 1e-6)
	assert.InDelta(t, 0, r.V1, 1e-6)
	assert.InDelta(t, 1, r.V2, 1e-6)
}

func TestAtlasAndResolver(t *testing.T) {
	dev := NewHeadlessDevice()
	b := NewAtlasBuilder(4)
	b.AddColor("stone", color.RGBA{128, 128, 128, 255})
	b.AddColor("dirt", color.RGBA{120, 80, 40, 255})
	atlas := b.Build(dev)

	require.True(t, atlas.Has(NotFound))
	stone, ok := atlas.Get("stone")
	require.True(t, ok)
	assert.InDelta(t, 0.5, stone.Width(), 1e-6)
	assert.Equal(t, atlas.Region(NotFound), atlas.Region("missing"))

	tex := NewTextures("blocks")
	tex.AddAtlas("blocks", atlas)
	assert.Equal(t, stone, tex.Resolve("stone").Region)
	assert.Equal(t, stone, tex.Resolve("blocks:stone").Region)
	assert.Same(t, atlas.Texture(), tex.Resolve("stone").Texture)

	miss := tex.Resolve("blocks:lava")
	assert.Equal(t, atlas.Region(NotFound), miss.Region)

	w, h := atlas.Texture().Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)
}

func TestBatchCubeCulling(t *testing.T) {
	dev := NewHeadlessDevice()
	batch := NewMainBatch(dev, 1024)
	var faces [world.FaceCount]UVRegion
	var tints [world.FaceCount]mgl32.Vec3
	for i := range faces {
		faces[i] = FullRegion
		tints[i] = mgl32.Vec3{1, 1, 1}
	}

	batch.Begin()
	batch.Cube(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 1, 1}, &faces, mgl32.Vec4{1, 1, 1, 1}, &tints, 0, 0xFF)
	batch.Cube(mgl32.Vec3{2.5, 0.5, 0.5}, mgl32.Vec3{1, 1, 1}, &faces, mgl32.Vec4{1, 1, 1, 1}, &tints, 0, 1<<world.FaceUp)
	batch.Flush()

	require.Len(t, dev.Draws, 1)
	verts := dev.Draws[0].Batch
	require.Len(t, verts, 7*6)

	// the single top face sits at y = 1 and is fully lit
	for _, v := range verts[36:] {
		assert.InDelta(t, 1.0, v.Position.Y(), 1e-6)
		assert.InDelta(t, 1.0, v.Color.X(), 1e-6)
	}
}

func TestBatchFlushesOnTextureSwitchAndCapacity(t *testing.T) {
	dev := NewHeadlessDevice()
	batch := NewMainBatch(dev, 12)
	a := dev.NewTexture(notFoundImage(2))
	b := dev.NewTexture(notFoundImage(2))
	white := mgl32.Vec4{1, 1, 1, 1}
	tint := mgl32.Vec3{1, 1, 1}

	batch.SetTexture(a)
	batch.Quad(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec2{1, 1}, white, tint, FullRegion)
	batch.SetTexture(a)
	batch.Quad(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec2{1, 1}, white, tint, FullRegion)
	assert.Empty(t, dev.Draws)

	// full at 12 vertices
	batch.Quad(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec2{1, 1}, white, tint, FullRegion)
	require.Len(t, dev.Draws, 1)

	batch.SetTexture(b)
	require.Len(t, dev.Draws, 2)
	assert.Same(t, a, dev.Draws[1].Texture)
	assert.Equal(t, 2, batch.Flushes())
}

func TestSampleLight(t *testing.T) {
	cs := world.NewChunks(1, 1, 0, 0)
	c := world.NewChunk(0, 0)
	c.Lightmap.Set(1, 2, 3, world.CombineLight(15, 0, 0, 0))
	require.True(t, cs.Put(c))

	l := SampleLight(mgl32.Vec3{1.5, 2.2, 3.9}, cs, false)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 0}, l)

	l = SampleLight(mgl32.Vec3{1.5, 2.2, 3.9}, cs, true)
	assert.InDelta(t, 1.0/15, l.Y(), 1e-6)

	// y is clamped to the top layer, which is unlit here
	l = SampleLight(mgl32.Vec3{1, 400, 1}, cs, false)
	assert.InDelta(t, 0.0, l.W(), 1e-6)
}
