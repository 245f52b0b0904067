package hashset

import (
	"runtime"
	"sync/atomic"
)

// spinLimit bounds how many times waitWhileResizing busy-checks before
// yielding to the scheduler.
const spinLimit = 32

// waitWhileResizing blocks the caller, without acquiring any lock itself,
// until no Refinable resize is in flight. It spins a bounded number of
// times and then yields, rather than sleeping or parking on a channel,
// since the wait is expected to be brief. This gate guards an upcoming
// sync.Mutex acquisition rather than standing in for one, so a plain
// runtime.Gosched() is the right-weight backoff.
func waitWhileResizing(resizing *atomic.Bool) {
	spins := 0
	for resizing.Load() {
		spins++
		if spins >= spinLimit {
			runtime.Gosched()
			spins = 0
		}
	}
}
