package utils

import "hash/fnv"

// FingerprintString hashes a rendered SQL string into a cache key. Two
// evaluations that produce the same text share the same prepared statement.
func FingerprintString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
