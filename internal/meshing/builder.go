package meshing

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"

	"mini-vox/internal/content"
	"mini-vox/internal/graphics"
	"mini-vox/internal/logging"
	"mini-vox/internal/voxels"
	"mini-vox/internal/world"
)

var log = logging.New("mesh-builder")

// Builder turns a padded voxel volume into chunk geometry. A Builder keeps its
// scratch buffers between builds and must not be shared between goroutines.
type Builder struct {
	capacity int
	idx      *content.Indices
	uv       graphics.UVResolver

	vertices    []graphics.ChunkVertex
	translucent []graphics.ChunkVertex
	entries     []SortingMeshEntry
	overflow    bool
}

// NewBuilder creates a builder emitting at most capacity vertices per chunk.
func NewBuilder(capacity int, idx *content.Indices, uv graphics.UVResolver) *Builder {
	return &Builder{
		capacity:    capacity,
		idx:         idx,
		uv:          uv,
		vertices:    make([]graphics.ChunkVertex, 0, capacity),
		translucent: make([]graphics.ChunkVertex, 0, 1024),
	}
}

// MemoryConsumption returns the size of the vertex scratch buffer in bytes.
func (b *Builder) MemoryConsumption() int {
	return b.capacity * graphics.ChunkVertexSize
}

// Capacity returns the vertex limit per chunk.
func (b *Builder) Capacity() int { return b.capacity }

// Build meshes chunk rows [bottom, top) from vol. It stops early and reports
// cancelled when ctx is done or the chunk is unloaded; no data is returned then.
func (b *Builder) Build(ctx context.Context, chunk *world.Chunk, vol *voxels.Volume, bottom, top int) (ChunkMeshData, bool) {
	b.vertices = b.vertices[:0]
	b.translucent = b.translucent[:0]
	b.entries = b.entries[:0]
	b.overflow = false

	baseX := chunk.X * world.ChunkW
	baseZ := chunk.Z * world.ChunkD
	top = min(top, world.ChunkH)

	for y := max(bottom, 0); y < top; y++ {
		if ctx.Err() != nil || !chunk.Alive() {
			return ChunkMeshData{}, true
		}
		for z := range world.ChunkD {
			for x := range world.ChunkW {
				vox := vol.Pick(baseX+x, y, baseZ+z)
				if vox.ID == world.BlockAir || vox.IsVoid() {
					continue
				}
				def := b.idx.Require(vox.ID)
				switch def.ModelFor(vox.State.Userbits()) {
				case content.ModelNone:
				case content.ModelBlock:
					b.box(vol, def, baseX, baseZ, x, y, z, content.FullBlock)
				case content.ModelAABB:
					b.box(vol, def, baseX, baseZ, x, y, z, def.Hitbox(vox.State))
				}
			}
		}
	}
	if b.overflow {
		log.Warn("chunk %d,%d exceeds %d vertices, mesh truncated", chunk.X, chunk.Z, b.capacity)
	}
	return b.createMesh(), false
}

func (b *Builder) createMesh() ChunkMeshData {
	data := ChunkMeshData{
		Vertices: append([]graphics.ChunkVertex(nil), b.vertices...),
	}
	if len(b.entries) == 0 {
		return data
	}
	// one allocation for all translucent vertices, entries cut from it
	all := append([]graphics.ChunkVertex(nil), b.translucent...)
	data.Sorting = make([]SortingMeshEntry, len(b.entries))
	off := 0
	for i, e := range b.entries {
		n := len(e.Vertices)
		data.Sorting[i] = SortingMeshEntry{
			Position: e.Position,
			Vertices: all[off : off+n : off+n],
		}
		off += n
	}
	return data
}

// isOpen reports whether a face of def is visible against neighbour n.
func (b *Builder) isOpen(def *content.Def, n world.Voxel) bool {
	if n.IsVoid() {
		return false
	}
	nd := b.idx.Require(n.ID)
	if nd.Solid && !nd.Translucent && nd.ModelFor(n.State.Userbits()) == content.ModelBlock {
		return false
	}
	if def.Translucent && n.ID == def.ID {
		return false
	}
	return true
}

func (b *Builder) box(vol *voxels.Volume, def *content.Def, baseX, baseZ, x, y, z int, hb content.AABB) {
	size := hb.Size()
	// block-local cube spans [-0.5, 0.5] around (x, y, z)
	center := mgl32.Vec3{float32(x), float32(y), float32(z)}.Add(hb.Center()).Sub(mgl32.Vec3{0.5, 0.5, 0.5})
	bx, bz := baseX+x, baseZ+z

	var offset mgl32.Vec3
	translucent := def.Translucent
	if translucent {
		offset = mgl32.Vec3{float32(baseX) + 0.5, 0.5, float32(baseZ) + 0.5}
	}
	start := len(b.translucent)

	for f := range world.FaceCount {
		n := world.FaceNormals[f]
		if touchesBoundary(hb, f) && !b.isOpen(def, vol.Pick(bx+n[0], y+n[1], bz+n[2])) {
			continue
		}
		b.face(vol, def, world.Face(f), bx, y, bz, center.Add(offset), size, translucent)
	}

	if translucent && len(b.translucent) > start {
		b.entries = append(b.entries, SortingMeshEntry{
			Position: mgl32.Vec3{float32(bx) + 0.5, float32(y) + 0.5, float32(bz) + 0.5},
			Vertices: b.translucent[start:],
		})
	}
}

// touchesBoundary reports whether face f of the box lies on the block's cell boundary.
func touchesBoundary(hb content.AABB, f int) bool {
	const eps = 1e-4
	switch world.Face(f) {
	case world.FaceWest:
		return hb.Min[0] < eps
	case world.FaceEast:
		return hb.Max[0] > 1-eps
	case world.FaceDown:
		return hb.Min[1] < eps
	case world.FaceUp:
		return hb.Max[1] > 1-eps
	case world.FaceNorth:
		return hb.Min[2] < eps
	case world.FaceSouth:
		return hb.Max[2] > 1-eps
	}
	return false
}

var cornerSigns = [4][2]int{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

func (b *Builder) face(vol *voxels.Volume, def *content.Def, f world.Face, bx, by, bz int, center, size mgl32.Vec3, translucent bool) {
	if len(b.vertices)+len(b.translucent)+6 > b.capacity {
		b.overflow = true
		return
	}
	cf := &graphics.CubeFaces[f]
	n := world.FaceNormals[f]
	r := [3]int{int(cf.Right[0]), int(cf.Right[1]), int(cf.Right[2])}
	u := [3]int{int(cf.Up[0]), int(cf.Up[1]), int(cf.Up[2])}

	sn := size.Dot(mgl32.Vec3{abs(cf.Normal[0]), abs(cf.Normal[1]), abs(cf.Normal[2])})
	sr := size[cf.RightAxis]
	su := size[cf.UpAxis]
	pc := center.Add(cf.Normal.Mul(sn * 0.5))

	region := b.uv.Region(def.Textures[f])
	if sr < 1 || su < 1 {
		region.Scale(sr, su)
	}
	tint := def.FaceTint(f)
	shade := graphics.FaceShading[f]

	// outward layer
	ox, oy, oz := bx+n[0], by+n[1], bz+n[2]

	var corners [4]graphics.ChunkVertex
	for i, s := range cornerSigns {
		pos := pc.Add(cf.Right.Mul(float32(s[0]) * sr * 0.5)).Add(cf.Up.Mul(float32(s[1]) * su * 0.5))
		var sum [4]int
		for _, c := range [4][2]int{{0, 0}, {s[0], 0}, {0, s[1]}, {s[0], s[1]}} {
			l := vol.PickLight(
				ox+r[0]*c[0]+u[0]*c[1],
				oy+r[1]*c[0]+u[1]*c[1],
				oz+r[2]*c[0]+u[2]*c[1],
			)
			for ch := range 4 {
				sum[ch] += int(l.Extract(ch))
			}
		}
		corners[i] = graphics.ChunkVertex{
			Position: pos,
			UV:       cornerUV(region, i),
			Color:    vertexColor(sum, def.Emission, shade, tint),
		}
	}

	out := &b.vertices
	if translucent {
		out = &b.translucent
	}
	*out = append(*out, corners[0], corners[1], corners[2], corners[0], corners[2], corners[3])
}

func cornerUV(r graphics.UVRegion, corner int) mgl32.Vec2 {
	switch corner {
	case 0:
		return mgl32.Vec2{r.U1, r.V1}
	case 1:
		return mgl32.Vec2{r.U2, r.V1}
	case 2:
		return mgl32.Vec2{r.U2, r.V2}
	}
	return mgl32.Vec2{r.U1, r.V2}
}

// vertexColor averages four light samples, adds emission, takes the brighter
// of block and sun light per channel and applies shading and tint.
// Alpha carries the averaged sun level.
func vertexColor(sum [4]int, emission [3]uint8, shade float32, tint mgl32.Vec3) [4]uint8 {
	const scale = 1.0 / (4 * world.MaxLight)
	sun := float32(sum[world.ChannelS]) * scale
	var out [4]uint8
	for ch := range 3 {
		v := float32(sum[ch])*scale + float32(emission[ch])/world.MaxLight
		v = min(max(v, sun), 1) * shade * tint[ch]
		out[ch] = uint8(v*255 + 0.5)
	}
	out[3] = uint8(sun*255 + 0.5)
	return out
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
