package world

import (
	"sync"

	"mini-vox/internal/profiling"
)

// VoxelBuffer is a positioned box that GetVoxels fills with voxels and lights.
type VoxelBuffer interface {
	Bounds() (x, y, z, w, h, d int)
	Data() ([]Voxel, []Light)
}

// Chunks is the chunk provider: a square area of chunk slots around a center.
// Slot i holds chunk (OffsetX + i%Width, OffsetZ + i/Width) or nil.
type Chunks struct {
	mu      sync.RWMutex
	w, d    int
	ox, oz  int
	chunks  []*Chunk
	unloads []func(*Chunk)

	// LightPassing reports whether light passes through a block;
	// used for backlight boosting in GetVoxels. nil treats only air as passing.
	LightPassing func(BlockID) bool
}

// NewChunks creates an empty w x d area whose first slot is chunk (ox, oz).
func NewChunks(w, d, ox, oz int) *Chunks {
	return &Chunks{
		w:      w,
		d:      d,
		ox:     ox,
		oz:     oz,
		chunks: make([]*Chunk, w*d),
	}
}

// OnUnload registers a callback invoked (on the caller's goroutine) for every
// chunk leaving the area through Remove or SetCenter.
func (cs *Chunks) OnUnload(fn func(*Chunk)) {
	cs.mu.Lock()
	cs.unloads = append(cs.unloads, fn)
	cs.mu.Unlock()
}

func (cs *Chunks) Width() int   { return cs.w }
func (cs *Chunks) Depth() int   { return cs.d }
func (cs *Chunks) Volume() int  { return cs.w * cs.d }
func (cs *Chunks) OffsetX() int { return cs.ox }
func (cs *Chunks) OffsetZ() int { return cs.oz }

// Chunks returns the slot slice. Callers must not modify it.
func (cs *Chunks) Chunks() []*Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks
}

func (cs *Chunks) slot(cx, cz int) int {
	lx := cx - cs.ox
	lz := cz - cs.oz
	if lx < 0 || lz < 0 || lx >= cs.w || lz >= cs.d {
		return -1
	}
	return lz*cs.w + lx
}

// GetChunk returns the chunk at chunk coordinates or nil.
func (cs *Chunks) GetChunk(cx, cz int) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if i := cs.slot(cx, cz); i >= 0 {
		return cs.chunks[i]
	}
	return nil
}

// Put stores a chunk in its slot. It reports false if the chunk lies outside the area.
// A chunk previously in that slot is unloaded.
func (cs *Chunks) Put(c *Chunk) bool {
	cs.mu.Lock()
	i := cs.slot(c.X, c.Z)
	if i < 0 {
		cs.mu.Unlock()
		return false
	}
	old := cs.chunks[i]
	cs.chunks[i] = c
	cs.mu.Unlock()
	if old != nil && old != c {
		cs.unload(old)
	}
	return true
}

// Remove unloads the chunk at chunk coordinates, if any.
func (cs *Chunks) Remove(cx, cz int) {
	cs.mu.Lock()
	i := cs.slot(cx, cz)
	if i < 0 || cs.chunks[i] == nil {
		cs.mu.Unlock()
		return
	}
	old := cs.chunks[i]
	cs.chunks[i] = nil
	cs.mu.Unlock()
	cs.unload(old)
}

func (cs *Chunks) unload(c *Chunk) {
	c.markUnloaded()
	cs.mu.RLock()
	fns := cs.unloads
	cs.mu.RUnlock()
	for _, fn := range fns {
		fn(c)
	}
}

// SetCenter moves the area so that chunk (cx, cz) is in the middle.
// Chunks falling outside are unloaded.
func (cs *Chunks) SetCenter(cx, cz int) {
	defer profiling.Track("world.Chunks.SetCenter")()
	ox := cx - cs.w/2
	oz := cz - cs.d/2
	cs.mu.Lock()
	if ox == cs.ox && oz == cs.oz {
		cs.mu.Unlock()
		return
	}
	next := make([]*Chunk, cs.w*cs.d)
	var dropped []*Chunk
	for _, c := range cs.chunks {
		if c == nil {
			continue
		}
		lx := c.X - ox
		lz := c.Z - oz
		if lx < 0 || lz < 0 || lx >= cs.w || lz >= cs.d {
			dropped = append(dropped, c)
			continue
		}
		next[lz*cs.w+lx] = c
	}
	cs.chunks = next
	cs.ox, cs.oz = ox, oz
	cs.mu.Unlock()
	for _, c := range dropped {
		cs.unload(c)
	}
}

// Get returns the voxel at world coordinates or nil if no chunk holds it.
func (cs *Chunks) Get(x, y, z int) *Voxel {
	if y < 0 || y >= ChunkH {
		return nil
	}
	c := cs.GetChunk(floorDiv(x, ChunkW), floorDiv(z, ChunkD))
	if c == nil {
		return nil
	}
	return &c.Voxels[VoxelIndex(mod(x, ChunkW), y, mod(z, ChunkD), ChunkW, ChunkD)]
}

// GetLight returns the light at world coordinates, 0 outside loaded chunks.
// Above the world the sky is fully lit.
func (cs *Chunks) GetLight(x, y, z int) Light {
	if y >= ChunkH {
		return CombineLight(0, 0, 0, MaxLight)
	}
	if y < 0 {
		return 0
	}
	c := cs.GetChunk(floorDiv(x, ChunkW), floorDiv(z, ChunkD))
	if c == nil {
		return 0
	}
	return c.Lightmap.Get(mod(x, ChunkW), y, mod(z, ChunkD))
}

// Set stores a voxel at world coordinates and flags the owning chunk, and any
// neighbour sharing the touched border, as modified.
func (cs *Chunks) Set(x, y, z int, v Voxel) {
	if y < 0 || y >= ChunkH {
		return
	}
	cx, cz := floorDiv(x, ChunkW), floorDiv(z, ChunkD)
	c := cs.GetChunk(cx, cz)
	if c == nil {
		return
	}
	lx, lz := mod(x, ChunkW), mod(z, ChunkD)
	c.Set(lx, y, lz, v)

	// Mark neighbor chunks dirty if we touched a border block
	if lx == 0 {
		cs.markModified(cx-1, cz)
	} else if lx == ChunkW-1 {
		cs.markModified(cx+1, cz)
	}
	if lz == 0 {
		cs.markModified(cx, cz-1)
	} else if lz == ChunkD-1 {
		cs.markModified(cx, cz+1)
	}
}

func (cs *Chunks) markModified(cx, cz int) {
	if nb := cs.GetChunk(cx, cz); nb != nil {
		nb.Flags.Modified = true
	}
}

func (cs *Chunks) lightPassing(id BlockID) bool {
	if cs.LightPassing != nil {
		return cs.LightPassing(id)
	}
	return id == BlockAir
}

// GetVoxels copies the region covered by buf. Cells of missing chunks become
// BlockVoid with no light; cells at or above top become sunlit air.
// With backlight, block light of light-passing cells is raised by one.
func (cs *Chunks) GetVoxels(buf VoxelBuffer, backlight bool, top int) {
	defer profiling.Track("world.Chunks.GetVoxels")()
	x, y, z, w, h, d := buf.Bounds()
	voxels, lights := buf.Data()
	sky := CombineLight(0, 0, 0, MaxLight)

	scx, scz := floorDiv(x, ChunkW), floorDiv(z, ChunkD)
	ecx, ecz := floorDiv(x+w-1, ChunkW), floorDiv(z+d-1, ChunkD)

	for cz := scz; cz <= ecz; cz++ {
		for cx := scx; cx <= ecx; cx++ {
			chunk := cs.GetChunk(cx, cz)
			// clip the chunk's footprint to the buffer
			x0 := max(x, cx*ChunkW)
			x1 := min(x+w, (cx+1)*ChunkW)
			z0 := max(z, cz*ChunkD)
			z1 := min(z+d, (cz+1)*ChunkD)
			for ly := y; ly < y+h; ly++ {
				for lz := z0; lz < z1; lz++ {
					for lx := x0; lx < x1; lx++ {
						vidx := VoxelIndex(lx-x, ly-y, lz-z, w, d)
						switch {
						case chunk == nil || ly < 0:
							voxels[vidx] = Voxel{ID: BlockVoid}
							lights[vidx] = 0
						case ly >= top || ly >= ChunkH:
							voxels[vidx] = Voxel{ID: BlockAir}
							lights[vidx] = sky
						default:
							cidx := VoxelIndex(lx-cx*ChunkW, ly, lz-cz*ChunkD, ChunkW, ChunkD)
							vox := chunk.Voxels[cidx]
							light := chunk.Lightmap.Map[cidx]
							if backlight && cs.lightPassing(vox.ID) {
								light = CombineLight(
									min(MaxLight, light.Extract(ChannelR)+1),
									min(MaxLight, light.Extract(ChannelG)+1),
									min(MaxLight, light.Extract(ChannelB)+1),
									light.Extract(ChannelS),
								)
							}
							voxels[vidx] = vox
							lights[vidx] = light
						}
					}
				}
			}
		}
	}
}
