package voxels

import (
	"sync"
	"sync/atomic"
)

type dims struct{ w, h, d int }

// Pool keeps released volumes in free lists keyed by dimensions.
// It is meant to be used from one goroutine; the mutex only keeps misuse from
// corrupting the lists.
type Pool struct {
	mu    sync.Mutex
	free  map[dims][]*Volume
	total int
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{free: make(map[dims][]*Volume)}
}

// Handle owns a volume until Release returns it to the pool.
type Handle struct {
	pool     *Pool
	volume   *Volume
	released atomic.Bool
}

// Volume returns the owned volume. It must not be used after Release.
func (h *Handle) Volume() *Volume { return h.volume }

// Release returns the volume to its pool. Calling it more than once is a no-op.
func (h *Handle) Release() {
	if h == nil || !h.released.CompareAndSwap(false, true) {
		return
	}
	h.pool.put(h.volume)
}

// Acquire returns a volume of exactly w x h x d, reused when one is free.
func (p *Pool) Acquire(w, h, d int) *Handle {
	key := dims{w, h, d}
	p.mu.Lock()
	var v *Volume
	if list := p.free[key]; len(list) > 0 {
		v = list[len(list)-1]
		list[len(list)-1] = nil
		p.free[key] = list[:len(list)-1]
	} else {
		p.total++
	}
	p.mu.Unlock()
	if v == nil {
		v = NewVolume(w, h, d)
	}
	return &Handle{pool: p, volume: v}
}

func (p *Pool) put(v *Volume) {
	key := dims{v.w, v.h, v.d}
	p.mu.Lock()
	p.free[key] = append(p.free[key], v)
	p.mu.Unlock()
}

// CountTotal returns how many volumes the pool has allocated.
func (p *Pool) CountTotal() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// CountFree returns how many volumes are waiting for reuse.
func (p *Pool) CountFree() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, list := range p.free {
		n += len(list)
	}
	return n
}
