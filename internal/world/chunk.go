package world

import "sync/atomic"

const (
	// Chunk dimensions
	ChunkW   = 16
	ChunkH   = 256
	ChunkD   = 16
	ChunkVol = ChunkW * ChunkH * ChunkD
)

// ChunkKey is the planar grid position of a chunk column.
type ChunkKey struct {
	X, Z int
}

// ChunkFlags tracks what changed in a chunk since it was last rendered.
type ChunkFlags struct {
	Modified     bool // voxels changed since the last mesh build
	Lighted      bool // lighting has been computed at least once
	DirtyHeights bool // Top/Bottom need recomputing
}

// Chunk is a full-height column of voxels
type Chunk struct {
	X, Z     int
	Voxels   [ChunkVol]Voxel
	Lightmap Lightmap
	Flags    ChunkFlags

	// Vertical bounds of non-air content: [Bottom, Top)
	Top    int
	Bottom int

	alive atomic.Bool
}

// NewChunk creates an empty chunk at the specified chunk coordinates
func NewChunk(x, z int) *Chunk {
	c := &Chunk{
		X:      x,
		Z:      z,
		Top:    ChunkH,
		Bottom: 0,
	}
	c.Flags.DirtyHeights = true
	c.alive.Store(true)
	return c
}

// Key returns the chunk's grid key.
func (c *Chunk) Key() ChunkKey {
	return ChunkKey{X: c.X, Z: c.Z}
}

// Alive reports whether the chunk is still loaded. Safe for concurrent use.
func (c *Chunk) Alive() bool {
	return c.alive.Load()
}

func (c *Chunk) markUnloaded() {
	c.alive.Store(false)
}

func inChunk(x, y, z int) bool {
	return x >= 0 && x < ChunkW && y >= 0 && y < ChunkH && z >= 0 && z < ChunkD
}

// Get returns the voxel at chunk-local coordinates, void when out of range.
func (c *Chunk) Get(x, y, z int) Voxel {
	if !inChunk(x, y, z) {
		return Voxel{ID: BlockVoid}
	}
	return c.Voxels[VoxelIndex(x, y, z, ChunkW, ChunkD)]
}

// Set stores a voxel at chunk-local coordinates and flags the chunk modified.
func (c *Chunk) Set(x, y, z int, v Voxel) {
	if !inChunk(x, y, z) {
		return
	}
	idx := VoxelIndex(x, y, z, ChunkW, ChunkD)
	if c.Voxels[idx] == v {
		return
	}
	c.Voxels[idx] = v
	c.Flags.Modified = true
	c.Flags.DirtyHeights = true
}

// UpdateHeights recomputes Top and Bottom from the voxel data.
func (c *Chunk) UpdateHeights() {
	const layer = ChunkW * ChunkD
	c.Bottom = 0
	c.Top = ChunkH
	for i := 0; i < ChunkVol; i++ {
		if c.Voxels[i].ID != BlockAir {
			c.Bottom = i / layer
			break
		}
	}
	for i := ChunkVol - 1; i >= 0; i-- {
		if c.Voxels[i].ID != BlockAir {
			c.Top = i/layer + 1
			break
		}
	}
	c.Flags.DirtyHeights = false
}
