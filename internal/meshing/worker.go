package meshing

import (
	"context"

	"mini-vox/internal/voxels"
	"mini-vox/internal/world"
)

// Job asks a worker to mesh one chunk. The worker owns Volume until the
// result is applied; only the submitting goroutine releases it.
type Job struct {
	Chunk  *world.Chunk
	Volume *voxels.Handle
	// Row range snapshot taken on submission.
	Bottom, Top int
}

// Result is what a worker produced for a job.
type Result struct {
	Key       world.ChunkKey
	Cancelled bool
	Data      ChunkMeshData
}

// BuildWorker adapts a Builder to the pool's Worker interface.
type BuildWorker struct {
	builder *Builder
}

// NewBuildWorker wraps b.
func NewBuildWorker(b *Builder) *BuildWorker {
	return &BuildWorker{builder: b}
}

func (w *BuildWorker) Build(ctx context.Context, job Job) (Result, error) {
	data, cancelled := w.builder.Build(ctx, job.Chunk, job.Volume.Volume(), job.Bottom, job.Top)
	return Result{
		Key:       job.Chunk.Key(),
		Cancelled: cancelled,
		Data:      data,
	}, nil
}
