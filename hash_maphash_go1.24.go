//go:build go1.24

package hashset

import "hash/maphash"

// maphashSum64 hashes v directly via the stdlib's generic comparable
// hasher, available from Go 1.24 onward. This sidesteps the need to
// byte-serialize v by hand, the way the pre-1.24 fallback in
// hash_maphash_fallback.go must.
func maphashSum64[T comparable](seed maphash.Seed, v T) uint64 {
	return maphash.Comparable(seed, v)
}
