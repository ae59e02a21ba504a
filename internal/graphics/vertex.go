package graphics

import "github.com/go-gl/mathgl/mgl32"

// ChunkVertex is one vertex of a chunk mesh. Color rgb is the lit, shaded and
// tinted vertex color; alpha holds the sun level.
type ChunkVertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
	Color    [4]uint8
}

// ChunkVertexSize is the byte size of ChunkVertex.
const ChunkVertexSize = 3*4 + 2*4 + 4

// BatchVertex is one vertex of the immediate-mode batch.
type BatchVertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
	Color    mgl32.Vec4
}

// BatchVertexSize is the byte size of BatchVertex.
const BatchVertexSize = 3*4 + 2*4 + 4*4
