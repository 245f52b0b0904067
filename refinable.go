package hashset

import (
	"sync"
	"sync/atomic"
)

// refinableTable is one generation of the Refinable variant's geometry:
// its bucket array and the one-mutex-per-bucket lock array that guards it.
// The two slices are always the same length and are always replaced
// together.
type refinableTable[T comparable] struct {
	buckets [][]T
	locks   []paddedMutex
}

// Refinable is the finest-grained variant: one lock per bucket, with the
// lock array itself growing and shrinking alongside the bucket array.
// Because the set of locks changes across a resize, a normal operation
// cannot treat "I hold a lock" as sufficient evidence that it holds the
// right lock for the table's current geometry. It must also confirm no
// resize committed between computing its bucket index and acquiring that
// bucket's lock, using a version stamp bumped on every resize.
type Refinable[T comparable] struct {
	hash Hasher[T]

	table   atomic.Pointer[refinableTable[T]]
	size    atomic.Int64
	version atomic.Uint64

	resizing atomic.Bool
	// owner holds a non-zero per-resize token while resizing is true, and
	// 0 otherwise. resize never calls back into Add/Remove/Contains on its
	// own goroutine, so no caller of the wait gate is ever the active
	// resizer; owner is therefore informational only, read by tests to
	// confirm a quiescent set settles back to 0, and not consulted by the
	// wait gate or the per-op retry check.
	owner atomic.Uint64

	resizeMu sync.Mutex

	retiredMu sync.Mutex
	retired   []*refinableTable[T]
	nextOwner atomic.Uint64
}

// NewRefinable creates a Refinable set with room for capacity buckets
// (rounded up to kMinBuckets) and exactly that many bucket locks.
func NewRefinable[T comparable](capacity int, hash Hasher[T]) *Refinable[T] {
	n := normalizeCapacity(capacity)
	r := &Refinable[T]{hash: hash}
	r.table.Store(&refinableTable[T]{
		buckets: make([][]T, n),
		locks:   make([]paddedMutex, n),
	})
	return r
}

// Add waits out any resize in flight, snapshots the version, locks the
// bucket the current geometry names, and retries from the top if a resize
// committed (or is committing) before the mutation. Growth is triggered
// afterward, against the capacity this call actually operated under.
func (r *Refinable[T]) Add(v T) bool {
	var usedCap int
	for {
		waitWhileResizing(&r.resizing)
		verBefore := r.version.Load()
		t := r.table.Load()
		curCap := len(t.buckets)
		i := int(r.hash(v) % uint64(curCap))

		lk := &t.locks[i].mu
		lk.Lock()
		if r.version.Load() != verBefore || r.resizing.Load() {
			lk.Unlock()
			continue
		}

		b := t.buckets[i]
		found := false
		for _, e := range b {
			if e == v {
				found = true
				break
			}
		}
		if found {
			lk.Unlock()
			return false
		}
		t.buckets[i] = append(b, v)
		r.size.Add(1)
		usedCap = curCap
		lk.Unlock()
		break
	}

	if !r.resizing.Load() && float64(r.size.Load())/float64(usedCap) > kMaxLoadFactor {
		r.resize(usedCap * 2)
	}
	return true
}

// Remove mirrors Add's retry loop, then shrinks when warranted.
func (r *Refinable[T]) Remove(v T) bool {
	var usedCap int
	removed := false
	for {
		waitWhileResizing(&r.resizing)
		verBefore := r.version.Load()
		t := r.table.Load()
		curCap := len(t.buckets)
		i := int(r.hash(v) % uint64(curCap))

		lk := &t.locks[i].mu
		lk.Lock()
		if r.version.Load() != verBefore || r.resizing.Load() {
			lk.Unlock()
			continue
		}

		b := t.buckets[i]
		for j, e := range b {
			if e == v {
				b[j] = b[len(b)-1]
				t.buckets[i] = b[:len(b)-1]
				r.size.Add(-1)
				removed = true
				break
			}
		}
		usedCap = curCap
		lk.Unlock()
		break
	}
	if !removed {
		return false
	}

	if !r.resizing.Load() && float64(r.size.Load())/float64(usedCap) < kMinLoadFactor {
		r.resize(max(kMinBuckets, usedCap/2))
	}
	return true
}

// Contains mirrors the same retry loop and never triggers a resize.
func (r *Refinable[T]) Contains(v T) bool {
	for {
		waitWhileResizing(&r.resizing)
		verBefore := r.version.Load()
		t := r.table.Load()
		curCap := len(t.buckets)
		i := int(r.hash(v) % uint64(curCap))

		lk := &t.locks[i].mu
		lk.Lock()
		if r.version.Load() != verBefore || r.resizing.Load() {
			lk.Unlock()
			continue
		}

		b := t.buckets[i]
		for _, e := range b {
			if e == v {
				lk.Unlock()
				return true
			}
		}
		lk.Unlock()
		return false
	}
}

// Size loads the relaxed atomic counter directly; bucket locks protect
// structural mutation, not this read.
func (r *Refinable[T]) Size() int {
	return int(r.size.Load())
}

// resize migrates one old bucket at a time rather than holding every old
// bucket lock at once, which keeps the number of locks held simultaneously
// bounded regardless of table size. Any normal op that manages to lock an
// already-migrated (and since-cleared) old bucket will find resizing still
// true or the version already bumped, and retry against the new geometry.
func (r *Refinable[T]) resize(newCap int) {
	r.resizeMu.Lock()
	defer r.resizeMu.Unlock()

	newCap = normalizeCapacity(newCap)
	old := r.table.Load()
	if newCap == len(old.buckets) {
		return
	}

	token := r.nextOwner.Add(1)
	r.owner.Store(token)
	r.resizing.Store(true)

	newBuckets := make([][]T, newCap)
	newLocks := make([]paddedMutex, newCap)

	for i := range old.locks {
		old.locks[i].mu.Lock()
		for _, v := range old.buckets[i] {
			j := int(r.hash(v) % uint64(newCap))
			newBuckets[j] = append(newBuckets[j], v)
		}
		old.buckets[i] = nil
		old.locks[i].mu.Unlock()
	}

	r.table.Store(&refinableTable[T]{buckets: newBuckets, locks: newLocks})
	r.version.Add(1)

	r.resizing.Store(false)
	r.owner.Store(0)

	// Side-storage for the retired generation, kept for the resize-count
	// test hook. Go's garbage collector already keeps old.locks alive for
	// as long as any goroutine that loaded old before this swap still
	// holds that reference, so nothing here is load-bearing for safety.
	r.retiredMu.Lock()
	r.retired = append(r.retired, old)
	r.retiredMu.Unlock()
}

func (r *Refinable[T]) lockCount() int {
	return len(r.table.Load().locks)
}

func (r *Refinable[T]) bucketCount() int {
	return len(r.table.Load().buckets)
}

func (r *Refinable[T]) retiredGenerations() int {
	r.retiredMu.Lock()
	defer r.retiredMu.Unlock()
	return len(r.retired)
}

func (r *Refinable[T]) bucketsSnapshot() [][]T {
	r.resizeMu.Lock()
	defer r.resizeMu.Unlock()
	t := r.table.Load()
	out := make([][]T, len(t.buckets))
	copy(out, t.buckets)
	return out
}
