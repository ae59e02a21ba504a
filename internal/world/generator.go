package world

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Palette names the block ids the generator places.
type Palette struct {
	Bedrock BlockID
	Stone   BlockID
	Dirt    BlockID
	Grass   BlockID
	Sand    BlockID
	Water   BlockID
}

// Generator fills chunks from a noise heightmap. It feeds the demo viewer
// and tests with non-trivial terrain.
type Generator struct {
	height     valueNoise
	scale      float64
	baseHeight int
	amp        float64
	seaLevel   int
	palette    Palette

	// detail roughens the smooth heightmap by up to detailAmp blocks.
	detail    *perlin.Perlin
	detailAmp float64
}

// NewGenerator creates a generator with default shape settings.
func NewGenerator(seed int64, seaLevel int, palette Palette) *Generator {
	return &Generator{
		height:     valueNoise{seed: seed, octaves: 4, persistence: 0.5, lacunarity: 2},
		scale:      1.0 / 64.0,
		baseHeight: seaLevel - 8,
		amp:        32,
		seaLevel:   seaLevel,
		palette:    palette,
		detail:     perlin.NewPerlin(2, 2, 3, seed),
		detailAmp:  3,
	}
}

// HeightAt computes world surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	x := float64(worldX) * g.scale
	z := float64(worldZ) * g.scale
	n := g.height.At(x, z)
	height := float64(g.baseHeight) + n*g.amp
	height += g.detail.Noise2D(float64(worldX)/16, float64(worldZ)/16) * g.detailAmp
	return min(max(int(math.Floor(height)), 1), ChunkH-2)
}

// PopulateChunk fills a chunk using the noise heightmap.
func (g *Generator) PopulateChunk(c *Chunk) {
	p := g.palette
	for lx := range ChunkW {
		for lz := range ChunkD {
			height := g.HeightAt(c.X*ChunkW+lx, c.Z*ChunkD+lz)
			for y := 0; y <= height; y++ {
				id := p.Stone
				switch {
				case y == 0:
					id = p.Bedrock
				case y == height && height <= g.seaLevel:
					id = p.Sand
				case y == height:
					id = p.Grass
				case y > height-4:
					id = p.Dirt
				}
				c.Voxels[VoxelIndex(lx, y, lz, ChunkW, ChunkD)] = Voxel{ID: id}
			}
			for y := height + 1; y <= g.seaLevel; y++ {
				c.Voxels[VoxelIndex(lx, y, lz, ChunkW, ChunkD)] = Voxel{ID: p.Water}
			}
		}
	}
	c.Flags.Modified = true
	c.Flags.DirtyHeights = true
}
