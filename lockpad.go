package hashset

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// cacheLineSize is derived from golang.org/x/sys/cpu's own padding type
// rather than a hardcoded constant, so it tracks whatever that package
// knows about the build target.
const cacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// paddedMutex is a sync.Mutex padded out to its own cache line. Used for
// the Striped variant's fixed stripe array and the Refinable variant's
// per-bucket lock array, so that one goroutine locking/unlocking slot i
// does not force a cache-line transfer for a goroutine working on slot
// i+1 purely because the two mutexes happen to share a line.
type paddedMutex struct {
	mu sync.Mutex
	//lint:ignore U1000 prevents false sharing
	_ [(cacheLineSize - unsafe.Sizeof(sync.Mutex{})%cacheLineSize) % cacheLineSize]byte
}
