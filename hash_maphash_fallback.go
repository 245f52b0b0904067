//go:build !go1.24

package hashset

import (
	"fmt"
	"hash/maphash"
)

// maphashSum64 hashes v for Go versions before 1.24, which lack
// maphash.Comparable. Values are formatted through fmt.Sprintf rather than
// read as raw memory: raw-memory hashing would hash a string's header
// (pointer plus length) instead of its contents, so two equal strings
// backed by different allocations would hash unequal, breaking the
// Hasher/== agreement Hasher's doc comment requires. Formatting is slower
// but stays consistent with == for every comparable type, which is the
// only property this fallback needs; callers on the hot path should supply
// their own Hasher[T] rather than rely on this convenience default.
func maphashSum64[T comparable](seed maphash.Seed, v T) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	_, _ = h.WriteString(fmt.Sprintf("%#v", v))
	return h.Sum64()
}
