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
	Delete(key string) error
	Clear() error
}

// StatusKey generates the cache key for the knowledge-base status of the
// service at baseURL
func StatusKey(baseURL string) string {
	hash := sha256.Sum256([]byte(baseURL))
	return "factview:v1:kb-status:" + hex.EncodeToString(hash[:8])
}
