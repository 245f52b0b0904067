package hashset

import "sync"

// Coarse is the coarse-grained variant: one sync.Mutex guards every
// operation, including the rehash a triggered resize performs, so the
// lock is held across resize rather than re-entered.
type Coarse[T comparable] struct {
	mu      sync.Mutex
	hash    Hasher[T]
	buckets [][]T
	size    int
}

// NewCoarse creates a Coarse set with room for capacity buckets (rounded
// up to kMinBuckets).
func NewCoarse[T comparable](capacity int, hash Hasher[T]) *Coarse[T] {
	return &Coarse[T]{
		hash:    hash,
		buckets: make([][]T, normalizeCapacity(capacity)),
	}
}

func (c *Coarse[T]) index(v T) int {
	return int(c.hash(v) % uint64(len(c.buckets)))
}

// Add inserts v under the global lock, growing the table if the resulting
// load factor exceeds kMaxLoadFactor.
func (c *Coarse[T]) Add(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(v)
	for _, e := range c.buckets[i] {
		if e == v {
			return false
		}
	}
	c.buckets[i] = append(c.buckets[i], v)
	c.size++
	if c.loadFactor() > kMaxLoadFactor {
		c.resizeLocked(len(c.buckets) * 2)
	}
	return true
}

// Remove deletes v under the global lock, shrinking the table if the
// resulting load factor undershoots kMinLoadFactor.
func (c *Coarse[T]) Remove(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(v)
	b := c.buckets[i]
	for j, e := range b {
		if e == v {
			b[j] = b[len(b)-1]
			c.buckets[i] = b[:len(b)-1]
			c.size--
			if c.loadFactor() < kMinLoadFactor && len(c.buckets) > kMinBuckets {
				c.resizeLocked(len(c.buckets) / 2)
			}
			return true
		}
	}
	return false
}

// Contains takes the global lock to avoid a torn read against a resize in
// flight.
func (c *Coarse[T]) Contains(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(v)
	for _, e := range c.buckets[i] {
		if e == v {
			return true
		}
	}
	return false
}

// Size takes the global lock for the same reason Contains does.
func (c *Coarse[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *Coarse[T]) loadFactor() float64 {
	return float64(c.size) / float64(len(c.buckets))
}

// resizeLocked assumes the caller already holds mu.
func (c *Coarse[T]) resizeLocked(newCap int) {
	newCap = normalizeCapacity(newCap)
	if newCap == len(c.buckets) {
		return
	}
	newBuckets := make([][]T, newCap)
	for _, bucket := range c.buckets {
		for _, v := range bucket {
			j := int(c.hash(v) % uint64(newCap))
			newBuckets[j] = append(newBuckets[j], v)
		}
	}
	c.buckets = newBuckets
}

func (c *Coarse[T]) bucketsSnapshot() [][]T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]T, len(c.buckets))
	copy(out, c.buckets)
	return out
}
