package meshing

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"mini-vox/internal/graphics"
)

// SortingMeshEntry is a group of translucent vertices drawn as a unit,
// ordered by distance from the camera. Vertices are in world space.
type SortingMeshEntry struct {
	Position mgl32.Vec3
	Vertices []graphics.ChunkVertex
	Distance int64
}

// ChunkMeshData is the output of one build. Vertices are relative to the
// chunk origin shifted by half a block.
type ChunkMeshData struct {
	Vertices []graphics.ChunkVertex
	Sorting  []SortingMeshEntry
}

// VertexCount returns opaque plus translucent vertices.
func (d *ChunkMeshData) VertexCount() int {
	n := len(d.Vertices)
	for i := range d.Sorting {
		n += len(d.Sorting[i].Vertices)
	}
	return n
}

// SortEntries refreshes each entry's squared distance to camera and orders
// them farthest first. Equal distances keep their order.
func SortEntries(entries []SortingMeshEntry, camera mgl32.Vec3) {
	UpdateDistances(entries, camera)
	slices.SortStableFunc(entries, func(a, b SortingMeshEntry) int {
		switch {
		case a.Distance > b.Distance:
			return -1
		case a.Distance < b.Distance:
			return 1
		}
		return 0
	})
}

// UpdateDistances stores the squared distance of every entry to camera.
func UpdateDistances(entries []SortingMeshEntry, camera mgl32.Vec3) {
	for i := range entries {
		d := entries[i].Position.Sub(camera)
		entries[i].Distance = int64(d.Dot(d))
	}
}

// WriteEntries concatenates the entries' vertices into buf, growing it when
// too small, and returns the filled prefix.
func WriteEntries(buf []graphics.ChunkVertex, entries []SortingMeshEntry) ([]graphics.ChunkVertex, []graphics.ChunkVertex) {
	size := 0
	for i := range entries {
		size += len(entries[i].Vertices)
	}
	if cap(buf) < size {
		buf = make([]graphics.ChunkVertex, size)
	}
	buf = buf[:cap(buf)]
	off := 0
	for i := range entries {
		off += copy(buf[off:], entries[i].Vertices)
	}
	return buf, buf[:size]
}
