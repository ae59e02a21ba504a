package content

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-vox/internal/world"
)

func TestDefaultIndices(t *testing.T) {
	idx := Default()

	air := idx.Require(world.BlockAir)
	assert.Equal(t, "air", air.Name)
	assert.Equal(t, ModelNone, air.Model)

	stone, err := idx.ByName("stone")
	require.NoError(t, err)
	assert.Equal(t, ModelBlock, stone.Model)
	assert.True(t, stone.Occludes())
	assert.Equal(t, "stone", stone.Textures[world.FaceUp])

	grass, err := idx.ByName("grass")
	require.NoError(t, err)
	assert.Equal(t, "grass_top", grass.Textures[world.FaceUp])
	assert.Equal(t, "dirt", grass.Textures[world.FaceDown])
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, grass.FaceTint(world.FaceEast))
	assert.NotEqual(t, mgl32.Vec3{1, 1, 1}, grass.FaceTint(world.FaceUp))

	water, err := idx.ByName("water")
	require.NoError(t, err)
	assert.False(t, water.Occludes())
	assert.True(t, idx.LightPassing(water.ID))
}

func TestRequireUnknownID(t *testing.T) {
	idx := Default()
	def := idx.Require(world.BlockID(5000))
	assert.Equal(t, ModelNone, def.Model)
	assert.Equal(t, ModelNone, idx.ModelOf(world.Voxel{ID: world.BlockVoid}))

	_, err := idx.ByName("nope")
	assert.ErrorIs(t, err, ErrUnknownBlock)
}

func TestVariantsAndRotatedHitboxes(t *testing.T) {
	idx := Default()
	slab, err := idx.ByName("slab")
	require.NoError(t, err)

	assert.Equal(t, ModelAABB, idx.ModelOf(world.Voxel{ID: slab.ID}))
	assert.Equal(t, ModelBlock, idx.ModelOf(world.Voxel{ID: slab.ID, State: world.MakeState(0, 1)}))

	up := slab.Hitbox(world.MakeState(0, 0))
	assert.Equal(t, mgl32.Vec3{1, 0.5, 1}, up.Size())

	flipped := slab.Hitbox(world.MakeState(4, 0))
	assert.InDelta(t, 0.5, flipped.Min[1], 1e-6)
	assert.InDelta(t, 1.0, flipped.Max[1], 1e-6)
}

func TestAABBQuarterTurn(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{0.25, 1, 1}}
	r := b.rotate(1)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, r.Min)
	assert.Equal(t, mgl32.Vec3{1, 1, 0.25}, r.Max)
	assert.Equal(t, b, b.rotate(4).rotate(4))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("blocks:\n  - name: a\n    model: sphere\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("blocks:\n  - name: a\n  - name: a\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("blocks:\n  - name: a\n    texture-faces: {top: x}\n"))
	assert.Error(t, err)
}

func TestPaletteAndTextures(t *testing.T) {
	idx := Default()
	p, err := idx.Palette("bedrock", "stone", "dirt", "grass", "sand", "water")
	require.NoError(t, err)
	assert.Equal(t, idx.Require(p.Grass).Name, "grass")

	_, err = idx.Palette("bedrock", "stone", "dirt", "grass", "sand", "lava")
	assert.ErrorIs(t, err, ErrUnknownBlock)

	assert.Contains(t, idx.Textures(), "grass_side")
}
