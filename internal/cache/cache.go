package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
}

// CacheKey generates a cache key from a source file path
func CacheKey(path string) string {
	hash := sha256.Sum256([]byte(path))
	return "assertlens:v1:" + hex.EncodeToString(hash[:])
}
