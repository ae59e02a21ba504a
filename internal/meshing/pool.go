package meshing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"mini-vox/internal/logging"
)

// ErrPoolStopped is reported for jobs picked up after the pool stopped on a failure.
var ErrPoolStopped = errors.New("worker pool stopped")

// Worker builds one job at a time. Every pool goroutine owns its own Worker,
// so implementations may keep scratch state without locking.
type Worker[J, R any] interface {
	Build(ctx context.Context, job J) (R, error)
}

type queuedJob[J any] struct {
	job J
	gen uint64
	ctx context.Context
}

type finishedJob[J, R any] struct {
	job J
	res R
	err error
	gen uint64
}

// WorkerPool runs jobs on a fixed set of goroutines and hands the results back
// to the goroutine calling Update.
type WorkerPool[J, R any] struct {
	name     string
	log      *logging.Logger
	jobQueue chan queuedJob[J]
	results  chan finishedJob[J, R]
	apply    func(job J, res R, err error)
	workers  int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	gen       uint64
	genCtx    context.Context
	genCancel context.CancelFunc
	closed    bool

	onDiscard  func(job J)
	stopOnFail atomic.Bool
	failed     atomic.Bool
	pending    atomic.Int64
}

// NewWorkerPool starts workers goroutines, each with a Worker from factory.
// apply receives every result of the current generation on the Update goroutine.
func NewWorkerPool[J, R any](
	name string,
	workers, queueSize int,
	factory func() Worker[J, R],
	apply func(job J, res R, err error),
) *WorkerPool[J, R] {
	workers = max(workers, 1)
	ctx, cancel := context.WithCancel(context.Background())
	genCtx, genCancel := context.WithCancel(ctx)

	pool := &WorkerPool[J, R]{
		name:      name,
		log:       logging.New(name),
		jobQueue:  make(chan queuedJob[J], queueSize),
		results:   make(chan finishedJob[J, R], queueSize+workers),
		apply:     apply,
		workers:   workers,
		ctx:       ctx,
		cancel:    cancel,
		genCtx:    genCtx,
		genCancel: genCancel,
	}
	pool.stopOnFail.Store(true)

	// Start worker goroutines
	for i := range workers {
		w := factory()
		pool.wg.Add(1)
		go pool.worker(i, w)
	}

	return pool
}

// SetStopOnFail controls whether a failed job stops the pool from accepting new jobs.
func (p *WorkerPool[J, R]) SetStopOnFail(stop bool) {
	p.stopOnFail.Store(stop)
}

// OnDiscard sets a hook receiving jobs dropped by ClearQueue, queued or in flight.
// It runs on the goroutine calling ClearQueue or Update.
func (p *WorkerPool[J, R]) OnDiscard(fn func(job J)) {
	p.onDiscard = fn
}

// EnqueueJob submits a job without blocking.
// Returns false if the queue is full or the pool is stopped.
func (p *WorkerPool[J, R]) EnqueueJob(job J) bool {
	if p.failed.Load() {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.jobQueue <- queuedJob[J]{job: job, gen: p.gen, ctx: p.genCtx}:
		p.pending.Add(1)
		return true
	default:
		return false // Queue is full
	}
}

// worker is the worker goroutine that processes jobs
func (p *WorkerPool[J, R]) worker(id int, w Worker[J, R]) {
	defer p.wg.Done()

	for {
		select {
		case q, ok := <-p.jobQueue:
			if !ok {
				return
			}
			res, err := p.run(w, q)

			// Send result back
			select {
			case p.results <- finishedJob[J, R]{job: q.job, res: res, err: err, gen: q.gen}:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

func (p *WorkerPool[J, R]) run(w Worker[J, R], q queuedJob[J]) (res R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: worker panic: %v", p.name, r)
		}
	}()
	if p.failed.Load() {
		return res, ErrPoolStopped
	}
	return w.Build(q.ctx, q.job)
}

// Update drains completed results and applies them on the calling goroutine.
// Results from before the last ClearQueue are discarded instead.
func (p *WorkerPool[J, R]) Update() {
	p.mu.Lock()
	gen := p.gen
	p.mu.Unlock()

	for {
		select {
		case f := <-p.results:
			p.pending.Add(-1)
			if f.gen != gen {
				p.discard(f.job)
				continue
			}
			if f.err != nil {
				p.log.Error("job failed: %v", f.err)
				if p.stopOnFail.Load() && !errors.Is(f.err, ErrPoolStopped) {
					p.failed.Store(true)
					p.log.Error("stopping after failure")
				}
			}
			p.apply(f.job, f.res, f.err)
		default:
			return // No more results to process this frame
		}
	}
}

func (p *WorkerPool[J, R]) discard(job J) {
	if p.onDiscard != nil {
		p.onDiscard(job)
	}
}

// ClearQueue drops every queued job and cancels the ones being built.
// Neither reaches the apply callback.
func (p *WorkerPool[J, R]) ClearQueue() {
	p.mu.Lock()
	p.genCancel()
	p.gen++
	p.genCtx, p.genCancel = context.WithCancel(p.ctx)
	p.mu.Unlock()

	for {
		select {
		case q, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.pending.Add(-1)
			p.discard(q.job)
		default:
			return
		}
	}
}

// WorkersCount returns the number of worker goroutines.
func (p *WorkerPool[J, R]) WorkersCount() int { return p.workers }

// QueueLength returns the current number of jobs in the queue
func (p *WorkerPool[J, R]) QueueLength() int { return len(p.jobQueue) }

// Pending returns jobs enqueued but not yet collected by Update.
func (p *WorkerPool[J, R]) Pending() int { return int(p.pending.Load()) }

// Failed reports whether the pool stopped after a failure.
func (p *WorkerPool[J, R]) Failed() bool { return p.failed.Load() }

// Shutdown gracefully shuts down the worker pool. Pending results are dropped.
func (p *WorkerPool[J, R]) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.genCancel()
	p.cancel()
	close(p.jobQueue)
	p.mu.Unlock()
	p.wg.Wait()
}
