package driver

import (
	"sync"

	"github.com/phil-mansfield/gotraj/particle"
)

// WorkPool hands out slices of primary particles to simulation threads. It is
// safe to use from multiple goroutines.
type WorkPool struct {
	mu   sync.Mutex
	ps   []particle.Particle
	tags []uint32
	next int
}

// NewWorkPool creates a pool over the given primaries. ps and tags must be the
// same length and are not copied.
func NewWorkPool(ps []particle.Particle, tags []uint32) *WorkPool {
	if len(tags) < len(ps) { ps = ps[:len(tags)] }
	return &WorkPool{ ps: ps, tags: tags[:len(ps)] }
}

// Get returns up to n primaries which have not been handed out yet. Empty
// slices are returned once the pool is exhausted.
func (pool *WorkPool) Get(n int) ([]particle.Particle, []uint32) {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if n < 0 { n = 0 }
	start := pool.next
	end := start + n
	if end > len(pool.ps) { end = len(pool.ps) }
	pool.next = end
	return pool.ps[start:end], pool.tags[start:end]
}

// Remaining returns the number of primaries which have not been handed out.
func (pool *WorkPool) Remaining() int {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	return len(pool.ps) - pool.next
}

func (pool *WorkPool) Len() int { return len(pool.ps) }

// Done returns true if every primary has been handed out.
func (pool *WorkPool) Done() bool { return pool.Remaining() == 0 }
