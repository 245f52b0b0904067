package hashset

import (
	"sync"
	"sync/atomic"
)

// stripedTable is the bucket array a Striped set currently points at. It is
// replaced wholesale by resize; the lock array that guards it is not part
// of this struct because, unlike the Refinable variant, Striped's lock
// count never changes.
type stripedTable[T comparable] struct {
	buckets [][]T
}

// Striped holds a fixed-size array of S stripe locks, independent of the
// bucket count: bucket b is guarded by locks[b%S]. Resize grows or shrinks
// the bucket array but never touches S, which is the defining property of
// this variant.
type Striped[T comparable] struct {
	hash     Hasher[T]
	table    atomic.Pointer[stripedTable[T]]
	size     atomic.Int64
	locks    []paddedMutex
	resizeMu sync.Mutex
}

// NewStriped creates a Striped set with room for capacity buckets (rounded
// up to kMinBuckets) and a fixed lock array of stripes mutexes. A
// non-positive stripes is coerced to the default of 64.
func NewStriped[T comparable](capacity, stripes int, hash Hasher[T]) *Striped[T] {
	if stripes <= 0 {
		stripes = defaultStripes
	}
	s := &Striped[T]{
		hash:  hash,
		locks: make([]paddedMutex, stripes),
	}
	s.table.Store(&stripedTable[T]{buckets: make([][]T, normalizeCapacity(capacity))})
	return s
}

func (s *Striped[T]) stripeOf(bucket int) int {
	return bucket % len(s.locks)
}

// Add computes the bucket and its owning stripe against the currently
// observed capacity, locks that stripe, re-checks capacity didn't just
// change under us, and only then mutates.
func (s *Striped[T]) Add(v T) bool {
	var usedCap int
	for {
		t := s.table.Load()
		curCap := len(t.buckets)
		i := int(s.hash(v) % uint64(curCap))
		stripe := s.stripeOf(i)

		lk := &s.locks[stripe].mu
		lk.Lock()
		if len(s.table.Load().buckets) != curCap {
			lk.Unlock()
			continue
		}

		b := t.buckets[i]
		for _, e := range b {
			if e == v {
				lk.Unlock()
				return false
			}
		}
		t.buckets[i] = append(b, v)
		s.size.Add(1)
		usedCap = curCap
		lk.Unlock()
		break
	}

	if s.loadFactor(usedCap) > kMaxLoadFactor {
		s.resize(usedCap * 2)
	}
	return true
}

// Remove follows the same protocol as Add, then shrinks when the load
// factor undershoots kMinLoadFactor and the table is above the floor.
func (s *Striped[T]) Remove(v T) bool {
	var usedCap int
	removed := false
	for {
		t := s.table.Load()
		curCap := len(t.buckets)
		i := int(s.hash(v) % uint64(curCap))
		stripe := s.stripeOf(i)

		lk := &s.locks[stripe].mu
		lk.Lock()
		if len(s.table.Load().buckets) != curCap {
			lk.Unlock()
			continue
		}

		b := t.buckets[i]
		for j, e := range b {
			if e == v {
				b[j] = b[len(b)-1]
				t.buckets[i] = b[:len(b)-1]
				s.size.Add(-1)
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

	if s.loadFactor(usedCap) < kMinLoadFactor && usedCap > kMinBuckets {
		s.resize(usedCap / 2)
	}
	return true
}

// Contains follows the same protocol, without ever triggering a resize.
func (s *Striped[T]) Contains(v T) bool {
	for {
		t := s.table.Load()
		curCap := len(t.buckets)
		i := int(s.hash(v) % uint64(curCap))
		stripe := s.stripeOf(i)

		lk := &s.locks[stripe].mu
		lk.Lock()
		if len(s.table.Load().buckets) != curCap {
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

// Size loads the relaxed atomic counter; stripe locks protect structural
// mutation, not this read.
func (s *Striped[T]) Size() int {
	return int(s.size.Load())
}

func (s *Striped[T]) loadFactor(curCap int) float64 {
	return float64(s.size.Load()) / float64(curCap)
}

// resize serializes with resizeMu, re-checks that the requested capacity
// still differs from the current bucket count, then takes every stripe lock in ascending order
// before rehashing. The fixed acquisition order is what makes deadlock
// between concurrent resizers and concurrent normal ops impossible.
func (s *Striped[T]) resize(newCap int) {
	s.resizeMu.Lock()
	defer s.resizeMu.Unlock()

	newCap = normalizeCapacity(newCap)
	old := s.table.Load()
	if newCap == len(old.buckets) {
		return
	}

	for i := range s.locks {
		s.locks[i].mu.Lock()
	}

	newBuckets := make([][]T, newCap)
	for _, bucket := range old.buckets {
		for _, v := range bucket {
			j := int(s.hash(v) % uint64(newCap))
			newBuckets[j] = append(newBuckets[j], v)
		}
	}
	s.table.Store(&stripedTable[T]{buckets: newBuckets})

	for i := range s.locks {
		s.locks[i].mu.Unlock()
	}
}

// stripeCount exposes len(locks) to tests that check the stripe count
// never changes across a resize.
func (s *Striped[T]) stripeCount() int {
	return len(s.locks)
}

func (s *Striped[T]) bucketsSnapshot() [][]T {
	s.resizeMu.Lock()
	defer s.resizeMu.Unlock()
	t := s.table.Load()
	out := make([][]T, len(t.buckets))
	copy(out, t.buckets)
	return out
}
