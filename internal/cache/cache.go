// Package cache provides the two-layer (memory + disk) cache used for
// embeddings and external search responses.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage interface shared by both layers
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a stable, namespaced key from arbitrary text
// (embedding inputs, search queries). The version segment lets a
// format change invalidate old entries without a manual wipe.
func CacheKey(text string) string {
	return "decisionflow:v1:" + keyHash(text)
}

// keyHash hexes the sha256 of s. Also used by the disk layer to turn
// keys into filesystem-safe names.
func keyHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
