package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type box struct {
	x, y, z, w, h, d int
	voxels           []Voxel
	lights           []Light
}

func newBox(x, y, z, w, h, d int) *box {
	return &box{x, y, z, w, h, d, make([]Voxel, w*h*d), make([]Light, w*h*d)}
}

func (b *box) Bounds() (int, int, int, int, int, int) { return b.x, b.y, b.z, b.w, b.h, b.d }
func (b *box) Data() ([]Voxel, []Light)               { return b.voxels, b.lights }

func (b *box) at(x, y, z int) (Voxel, Light) {
	i := VoxelIndex(x-b.x, y-b.y, z-b.z, b.w, b.d)
	return b.voxels[i], b.lights[i]
}

func TestChunkUpdateHeights(t *testing.T) {
	c := NewChunk(0, 0)
	c.Set(3, 10, 3, Voxel{ID: 1})
	c.Set(4, 40, 4, Voxel{ID: 1})
	require.True(t, c.Flags.DirtyHeights)

	c.UpdateHeights()
	assert.Equal(t, 10, c.Bottom)
	assert.Equal(t, 41, c.Top)
	assert.False(t, c.Flags.DirtyHeights)
}

func TestChunkSetMarksModifiedOnlyOnChange(t *testing.T) {
	c := NewChunk(0, 0)
	c.Set(0, 0, 0, Voxel{ID: 2})
	assert.True(t, c.Flags.Modified)

	c.Flags.Modified = false
	c.Set(0, 0, 0, Voxel{ID: 2})
	assert.False(t, c.Flags.Modified)
}

func TestChunksSetMarksBorderNeighbours(t *testing.T) {
	cs := NewChunks(3, 3, -1, -1)
	a := NewChunk(0, 0)
	b := NewChunk(-1, 0)
	require.True(t, cs.Put(a))
	require.True(t, cs.Put(b))

	cs.Set(0, 5, 7, Voxel{ID: 1})
	assert.True(t, a.Flags.Modified)
	assert.True(t, b.Flags.Modified)

	v := cs.Get(0, 5, 7)
	require.NotNil(t, v)
	assert.Equal(t, BlockID(1), v.ID)
	assert.Nil(t, cs.Get(100, 5, 7))
}

func TestChunksSetCenterUnloads(t *testing.T) {
	cs := NewChunks(3, 3, -1, -1)
	c := NewChunk(-1, -1)
	require.True(t, cs.Put(c))

	var unloaded []*Chunk
	cs.OnUnload(func(ch *Chunk) { unloaded = append(unloaded, ch) })

	cs.SetCenter(5, 5)
	require.Len(t, unloaded, 1)
	assert.Same(t, c, unloaded[0])
	assert.False(t, c.Alive())
	assert.Equal(t, 4, cs.OffsetX())
	assert.Nil(t, cs.GetChunk(-1, -1))
}

func TestChunksGetVoxelsPadding(t *testing.T) {
	cs := NewChunks(3, 3, -1, -1)
	c := NewChunk(0, 0)
	c.Voxels[VoxelIndex(0, 1, 0, ChunkW, ChunkD)] = Voxel{ID: 7}
	c.Lightmap.Set(0, 1, 0, CombineLight(1, 2, 3, 4))
	c.Lightmap.Set(5, 1, 5, CombineLight(0, 0, 0, 9))
	require.True(t, cs.Put(c))

	b := newBox(-2, 0, -2, ChunkW+4, 8, ChunkD+4)
	cs.GetVoxels(b, false, 4)

	v, l := b.at(0, 1, 0)
	assert.Equal(t, BlockID(7), v.ID)
	assert.Equal(t, CombineLight(1, 2, 3, 4), l)

	// neighbour chunk (-1, 0) is not loaded
	v, l = b.at(-1, 1, 0)
	assert.True(t, v.IsVoid())
	assert.Zero(t, l)

	// above top: sunlit air
	v, l = b.at(3, 6, 3)
	assert.Equal(t, BlockAir, v.ID)
	assert.Equal(t, uint8(MaxLight), l.Extract(ChannelS))
}

func TestChunksGetVoxelsBacklight(t *testing.T) {
	cs := NewChunks(1, 1, 0, 0)
	c := NewChunk(0, 0)
	c.Lightmap.Set(5, 1, 5, CombineLight(0, 15, 3, 9))
	require.True(t, cs.Put(c))

	b := newBox(0, 0, 0, ChunkW, 4, ChunkD)
	cs.GetVoxels(b, true, ChunkH)

	_, l := b.at(5, 1, 5)
	assert.Equal(t, CombineLight(1, 15, 4, 9), l)
}

func TestComputeSkyLight(t *testing.T) {
	c := NewChunk(0, 0)
	c.Voxels[VoxelIndex(2, 10, 2, ChunkW, ChunkD)] = Voxel{ID: 1}
	ComputeSkyLight(c, nil)

	assert.True(t, c.Flags.Lighted)
	assert.Equal(t, uint8(MaxLight), c.Lightmap.Get(2, 11, 2).Extract(ChannelS))
	assert.Zero(t, c.Lightmap.Get(2, 9, 2).Extract(ChannelS))
	assert.Equal(t, uint8(MaxLight), c.Lightmap.Get(3, 0, 3).Extract(ChannelS))
}

func BenchmarkGetVoxels(b *testing.B) {
	cs := NewChunks(3, 3, -1, -1)
	for x := -1; x <= 1; x++ {
		for z := -1; z <= 1; z++ {
			cs.Put(NewChunk(x, z))
		}
	}
	buf := newBox(-2, 0, -2, ChunkW+4, ChunkH, ChunkD+4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cs.GetVoxels(buf, true, ChunkH)
	}
}
