package chunks

import (
	"context"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/go-gl/mathgl/mgl32"

	"mini-vox/internal/config"
	"mini-vox/internal/content"
	"mini-vox/internal/graphics"
	"mini-vox/internal/graphics/renderer"
	"mini-vox/internal/logging"
	"mini-vox/internal/meshing"
	"mini-vox/internal/metrics"
	"mini-vox/internal/profiling"
	"mini-vox/internal/voxels"
	"mini-vox/internal/world"
)

const (
	// VoxelsBufferPadding is the border copied around a chunk for neighbour lookups.
	VoxelsBufferPadding = 2

	// SortInterval is the number of frames between translucent re-sorts of a chunk.
	SortInterval = 8

	importantDistance = world.ChunkW * 1.5
)

var log = logging.New("chunks-render")

type chunkMesh struct {
	mesh       graphics.Mesh
	sorting    []meshing.SortingMeshEntry
	sortedMesh graphics.Mesh
}

func (m *chunkMesh) delete() {
	m.mesh.Delete()
	if m.sortedMesh != nil {
		m.sortedMesh.Delete()
	}
}

type sortEntry struct {
	index int
	d     int64
}

// inflight marks a key with an outstanding background build. A synchronous
// build of the same key supersedes it and its result is dropped.
type inflight struct {
	superseded bool
}

// Stats is a snapshot of the renderer's bookkeeping.
type Stats struct {
	Cached   int
	InFlight int
	Queued   int
	Visible  int
	Workers  int
	Volumes  int
	Failed   bool
}

// ChunksRenderer keeps a mesh per loaded chunk, schedules builds and draws
// the cached meshes. All methods must be called from the render goroutine.
type ChunksRenderer struct {
	dev      graphics.Device
	chunks   *world.Chunks
	atlas    graphics.Texture
	frustum  *graphics.Frustum
	settings config.Graphics
	metrics  *metrics.Render

	meshes  map[world.ChunkKey]*chunkMesh
	inwork  map[world.ChunkKey]*inflight
	indices []sortEntry
	frameID int
	sortBuf []graphics.ChunkVertex
	visible int

	builder *meshing.Builder
	pool    *meshing.WorkerPool[meshing.Job, meshing.Result]
	volumes *voxels.Pool
}

var _ renderer.Renderable = (*ChunksRenderer)(nil)

// New creates the renderer and starts its build workers. Chunks leaving the
// provider's area are unloaded from the cache. A nil m records into
// unregistered collectors.
func New(
	dev graphics.Device,
	chunks *world.Chunks,
	idx *content.Indices,
	atlas *graphics.Atlas,
	settings config.Graphics,
	m *metrics.Render,
) *ChunksRenderer {
	if m == nil {
		m = metrics.NewRender(nil)
	}
	r := &ChunksRenderer{
		dev:      dev,
		chunks:   chunks,
		atlas:    atlas.Texture(),
		frustum:  graphics.NewFrustum(mgl32.Ident4()),
		settings: settings,
		metrics:  m,
		meshes:   make(map[world.ChunkKey]*chunkMesh),
		inwork:   make(map[world.ChunkKey]*inflight),
		builder:  meshing.NewBuilder(settings.ChunkMaxVertices, idx, atlas),
		volumes:  voxels.NewPool(),
	}

	capacity := settings.ChunkMaxVerticesFor()
	r.pool = meshing.NewWorkerPool(
		"chunks-render-pool",
		settings.ChunkMaxRenderers,
		max(chunks.Volume(), settings.ChunkMaxRenderers),
		func() meshing.Worker[meshing.Job, meshing.Result] {
			return meshing.NewBuildWorker(meshing.NewBuilder(capacity, idx, atlas))
		},
		r.apply,
	)
	r.pool.SetStopOnFail(false)
	r.pool.OnDiscard(func(job meshing.Job) {
		job.Volume.Release()
	})
	chunks.OnUnload(r.Unload)

	log.Info("created %d workers", r.pool.WorkersCount())
	log.Info("memory consumption is %s", humanize.IBytes(uint64(r.MemoryConsumption(capacity))))
	return r
}

// MemoryConsumption estimates builder scratch plus pooled volume memory in bytes
// for workers of the given vertex capacity.
func (r *ChunksRenderer) MemoryConsumption(capacity int) int {
	// voxel (4 B) plus light (2 B) per padded cell
	footprint := (world.ChunkW + VoxelsBufferPadding*2) * world.ChunkH * (world.ChunkD + VoxelsBufferPadding*2) * 6
	return capacity*graphics.ChunkVertexSize*r.pool.WorkersCount() +
		r.volumes.CountTotal()*footprint
}

func (r *ChunksRenderer) prepareVolume(chunk *world.Chunk) *voxels.Handle {
	if chunk.Flags.DirtyHeights {
		chunk.UpdateHeights()
	}
	h := r.volumes.Acquire(
		world.ChunkW+VoxelsBufferPadding*2,
		world.ChunkH,
		world.ChunkD+VoxelsBufferPadding*2,
	)
	h.Volume().SetPosition(
		chunk.X*world.ChunkW-VoxelsBufferPadding, 0,
		chunk.Z*world.ChunkD-VoxelsBufferPadding,
	)
	r.chunks.GetVoxels(h.Volume(), r.settings.Backlight, chunk.Top+1)
	return h
}

// RenderChunk builds the chunk's mesh. Important chunks are built synchronously and
// their mesh returned; others are enqueued once and nil is returned until the
// result is applied by Update.
func (r *ChunksRenderer) RenderChunk(chunk *world.Chunk, important bool) graphics.Mesh {
	key := chunk.Key()
	if important {
		defer profiling.Track("chunks.renderSync")()
		chunk.Flags.Modified = false
		h := r.prepareVolume(chunk)
		data, cancelled := r.builder.Build(context.Background(), chunk, h.Volume(), chunk.Bottom, chunk.Top)
		h.Release()
		if cancelled {
			r.metrics.Build(metrics.OutcomeCancelled)
			return nil
		}
		if job, ok := r.inwork[key]; ok {
			job.superseded = true
		}
		r.metrics.Build(metrics.OutcomeSync)
		return r.upload(key, data).mesh
	}
	// Modified stays set while a build is in flight, so edits made meanwhile
	// get their own build once the running one is applied.
	if _, ok := r.inwork[key]; ok {
		return nil
	}
	chunk.Flags.Modified = false
	h := r.prepareVolume(chunk)
	job := meshing.Job{Chunk: chunk, Volume: h, Bottom: chunk.Bottom, Top: chunk.Top}
	if !r.pool.EnqueueJob(job) {
		h.Release()
		// try again on the next retrieval
		chunk.Flags.Modified = true
		r.metrics.Build(metrics.OutcomeDropped)
		return nil
	}
	r.inwork[key] = &inflight{}
	return nil
}

func (r *ChunksRenderer) upload(key world.ChunkKey, data meshing.ChunkMeshData) *chunkMesh {
	if old, ok := r.meshes[key]; ok {
		old.delete()
	}
	m := &chunkMesh{
		mesh:    r.dev.NewChunkMesh(data.Vertices),
		sorting: data.Sorting,
	}
	r.meshes[key] = m
	return m
}

// apply runs on the Update goroutine for every finished job.
func (r *ChunksRenderer) apply(job meshing.Job, res meshing.Result, err error) {
	defer job.Volume.Release()
	key := job.Chunk.Key()
	state := r.inwork[key]
	delete(r.inwork, key)

	live := r.chunks.GetChunk(key.X, key.Z) == job.Chunk
	switch {
	case err != nil, res.Cancelled:
		if err != nil {
			log.Warn("build of chunk %d,%d failed: %v", key.X, key.Z, err)
			r.metrics.Build(metrics.OutcomeFailed)
		} else {
			r.metrics.Build(metrics.OutcomeCancelled)
		}
		// a live chunk keeps its old mesh and is rebuilt on the next retrieval
		if live {
			job.Chunk.Flags.Modified = true
		}
	case state != nil && state.superseded, !live:
		r.metrics.Build(metrics.OutcomeDropped)
	default:
		r.upload(key, res.Data)
		r.metrics.Build(metrics.OutcomeBuilt)
	}
}

// GetOrRender returns the cached mesh, scheduling a rebuild when the chunk
// changed since. Without a cached mesh it behaves like RenderChunk.
func (r *ChunksRenderer) GetOrRender(chunk *world.Chunk, important bool) graphics.Mesh {
	key := chunk.Key()
	if _, ok := r.meshes[key]; !ok {
		return r.RenderChunk(chunk, important)
	}
	if chunk.Flags.Modified && chunk.Flags.Lighted {
		r.RenderChunk(chunk, important)
	}
	return r.meshes[key].mesh
}

// Unload evicts the chunk's cache entry. An in-flight build for it is left to
// finish and dropped when applied.
func (r *ChunksRenderer) Unload(chunk *world.Chunk) {
	key := chunk.Key()
	if m, ok := r.meshes[key]; ok {
		m.delete()
		delete(r.meshes, key)
	}
}

// Clear drops every cached mesh and every queued or running build.
func (r *ChunksRenderer) Clear() {
	for _, m := range r.meshes {
		m.delete()
	}
	clear(r.meshes)
	// Builds discarded by ClearQueue no longer count as in flight: a key may be
	// enqueued again while its old build finishes, and the old result is
	// dropped by the pool's generation check.
	clear(r.inwork)
	r.pool.ClearQueue()
}

// Update applies finished builds. Call once per frame.
func (r *ChunksRenderer) Update() {
	defer profiling.Track("chunks.update")()
	r.pool.Update()
	r.metrics.QueueLength.Set(float64(r.pool.QueueLength()))
	r.metrics.InFlight.Set(float64(len(r.inwork)))
	r.metrics.CachedMeshes.Set(float64(len(r.meshes)))
}

func chunkBox(chunk *world.Chunk) (mgl32.Vec3, mgl32.Vec3) {
	x := float32(chunk.X * world.ChunkW)
	z := float32(chunk.Z * world.ChunkD)
	return mgl32.Vec3{x, float32(chunk.Bottom), z},
		mgl32.Vec3{x + world.ChunkW, float32(chunk.Top), z + world.ChunkD}
}

// RetrieveChunk returns the mesh to draw for slot index of the chunk provider,
// or nil when the slot is empty, the mesh is not ready or the chunk is culled.
func (r *ChunksRenderer) RetrieveChunk(index int, camera *graphics.Camera, culling bool) graphics.Mesh {
	chunk := r.chunks.Chunks()[index]
	if chunk == nil {
		return nil
	}
	if !chunk.Flags.Lighted {
		if m, ok := r.meshes[chunk.Key()]; ok {
			return m.mesh
		}
		return nil
	}
	center := mgl32.Vec3{
		(float32(chunk.X) + 0.5) * world.ChunkW,
		camera.Position.Y(),
		(float32(chunk.Z) + 0.5) * world.ChunkD,
	}
	distance := center.Sub(camera.Position).Len()
	mesh := r.GetOrRender(chunk, distance < importantDistance)
	if mesh == nil {
		return nil
	}
	if chunk.Flags.DirtyHeights {
		chunk.UpdateHeights()
	}
	if culling {
		if !r.frustum.IsBoxVisible(chunkBox(chunk)) {
			return nil
		}
	}
	return mesh
}

func (r *ChunksRenderer) updateIndices(camera *graphics.Camera) {
	volume := r.chunks.Volume()
	if len(r.indices) != volume {
		r.indices = r.indices[:0]
		for i := range volume {
			r.indices = append(r.indices, sortEntry{index: i})
		}
	}
	width := r.chunks.Width()
	ox, oz := r.chunks.OffsetX(), r.chunks.OffsetZ()
	px := camera.Position.X()/world.ChunkW - 0.5
	pz := camera.Position.Z()/world.ChunkD - 0.5
	for i := range r.indices {
		e := &r.indices[i]
		x := float32(e.index%width+ox) - px
		z := float32(e.index/width+oz) - pz
		e.d = int64((x*x + z*z) * 1024)
	}
	slices.SortStableFunc(r.indices, func(a, b sortEntry) int {
		switch {
		case a.d < b.d:
			return -1
		case a.d > b.d:
			return 1
		}
		return 0
	})
}

func planarDistance2(a, b mgl32.Vec3) float32 {
	dx := a.X() - b.X()
	dz := a.Z() - b.Z()
	return dx*dx + dz*dz
}

// DrawChunks draws the opaque meshes far to near, building missing ones on the way.
func (r *ChunksRenderer) DrawChunks(camera *graphics.Camera) {
	defer profiling.Track("chunks.drawChunks")()
	projView := camera.ProjView()
	r.frustum.Update(projView)

	r.dev.UseProgram(graphics.ProgramChunks)
	r.dev.SetProjView(projView)
	r.dev.BindTexture(r.atlas)
	r.dev.SetAlphaClip(true)

	r.updateIndices(camera)
	culling := r.settings.FrustumCulling
	dense2 := r.settings.DenseRenderDistance * r.settings.DenseRenderDistance

	r.visible = 0
	for i := len(r.indices) - 1; i >= 0; i-- {
		index := r.indices[i].index
		mesh := r.RetrieveChunk(index, camera, culling)
		if mesh == nil {
			continue
		}
		chunk := r.chunks.Chunks()[index]
		coord := mgl32.Vec3{
			float32(chunk.X*world.ChunkW) + 0.5, 0.5, float32(chunk.Z*world.ChunkD) + 0.5,
		}
		r.dev.SetModel(mgl32.Translate3D(coord.X(), coord.Y(), coord.Z()))
		center := coord.Add(mgl32.Vec3{world.ChunkW * 0.5, 0, world.ChunkD * 0.5})
		r.dev.SetDense(planarDistance2(camera.Position, center) < dense2)
		mesh.Draw()
		r.visible++
	}
	r.metrics.VisibleChunks.Set(float64(r.visible))
}

// DrawSortedMeshes draws translucent geometry back to front. Chunks with more
// than one entry are re-sorted every SortInterval frames, staggered by chunk x.
func (r *ChunksRenderer) DrawSortedMeshes(camera *graphics.Camera) {
	defer profiling.Track("chunks.drawSortedMeshes")()
	r.frameID++
	if len(r.indices) != r.chunks.Volume() {
		r.updateIndices(camera)
	}

	r.dev.UseProgram(graphics.ProgramChunks)
	r.dev.SetProjView(camera.ProjView())
	r.dev.BindTexture(r.atlas)
	r.dev.SetModel(mgl32.Ident4())
	r.dev.SetAlphaClip(false)
	r.dev.SetDense(false)

	culling := r.settings.FrustumCulling
	chunks := r.chunks.Chunks()
	for i := len(r.indices) - 1; i >= 0; i-- {
		chunk := chunks[r.indices[i].index]
		if chunk == nil || !chunk.Flags.Lighted {
			continue
		}
		m, ok := r.meshes[chunk.Key()]
		if !ok || len(m.sorting) == 0 {
			continue
		}
		if culling && !r.frustum.IsBoxVisible(chunkBox(chunk)) {
			continue
		}

		if len(m.sorting) == 1 {
			if m.sortedMesh == nil {
				m.sortedMesh = r.dev.NewChunkMesh(m.sorting[0].Vertices)
			}
			m.sortedMesh.Draw()
			continue
		}
		if m.sortedMesh == nil || (r.frameID+chunk.X)%SortInterval == 0 {
			meshing.SortEntries(m.sorting, camera.Position)
			var merged []graphics.ChunkVertex
			r.sortBuf, merged = meshing.WriteEntries(r.sortBuf, m.sorting)
			if m.sortedMesh != nil {
				m.sortedMesh.Delete()
			}
			m.sortedMesh = r.dev.NewChunkMesh(merged)
			r.metrics.SortedRebuilds.Inc()
		}
		m.sortedMesh.Draw()
	}
}

// DrawShadowsPass draws every cached opaque mesh visible from the shadow
// camera. Dense shading follows the distance to playerCamera.
func (r *ChunksRenderer) DrawShadowsPass(camera, playerCamera *graphics.Camera) {
	defer profiling.Track("chunks.drawShadowsPass")()
	projView := camera.ProjView()
	frustum := graphics.NewFrustum(projView)

	r.dev.UseProgram(graphics.ProgramChunks)
	r.dev.SetProjView(projView)
	r.dev.BindTexture(r.atlas)

	dense2 := r.settings.DenseRenderDistance * r.settings.DenseRenderDistance
	for _, chunk := range r.chunks.Chunks() {
		if chunk == nil {
			continue
		}
		m, ok := r.meshes[chunk.Key()]
		if !ok {
			continue
		}
		lo, hi := chunkBox(chunk)
		if !frustum.IsBoxVisible(lo, hi) {
			continue
		}
		r.dev.SetModel(mgl32.Translate3D(
			float32(chunk.X*world.ChunkW)+0.5, 0.5, float32(chunk.Z*world.ChunkD)+0.5,
		))
		r.dev.SetDense(planarDistance2(playerCamera.Position, lo.Add(hi).Mul(0.5)) < dense2)
		m.mesh.Draw()
	}
}

// VisibleChunks returns the number of chunks drawn by the last DrawChunks.
func (r *ChunksRenderer) VisibleChunks() int { return r.visible }

// InFlight reports whether a background build is outstanding for key.
func (r *ChunksRenderer) InFlight(key world.ChunkKey) bool {
	_, ok := r.inwork[key]
	return ok
}

// Stats returns the current counters.
func (r *ChunksRenderer) Stats() Stats {
	return Stats{
		Cached:   len(r.meshes),
		InFlight: len(r.inwork),
		Queued:   r.pool.QueueLength(),
		Visible:  r.visible,
		Workers:  r.pool.WorkersCount(),
		Volumes:  r.volumes.CountTotal(),
		Failed:   r.pool.Failed(),
	}
}

func (r *ChunksRenderer) Init() error { return nil }

// Render updates the cache and draws opaque then translucent chunk geometry.
func (r *ChunksRenderer) Render(ctx renderer.RenderContext) {
	r.Update()
	r.DrawChunks(ctx.Camera)
	r.DrawSortedMeshes(ctx.Camera)
}

func (r *ChunksRenderer) SetViewport(width, height int) {}

// Dispose stops the workers and deletes every mesh.
func (r *ChunksRenderer) Dispose() {
	r.Clear()
	r.pool.Shutdown()
}
