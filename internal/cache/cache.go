package cache

import (
	"context"
	"encoding/json"
	"time"

	"tredia-investing/internal/domain"

	"github.com/charmbracelet/log"
)

// Entry is a cached payload stamped with the moment it was fetched.
// Payload holds the JSON encoding of the cached value.
type Entry struct {
	Payload    json.RawMessage   `json:"payload"`
	FetchedAt  time.Time         `json:"fetched_at"`
	Provenance domain.Provenance `json:"provenance"`
}

// Valid reports whether the entry is still fresh at now.
func (e Entry) Valid(now time.Time, ttl time.Duration) bool {
	if e.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(e.FetchedAt) < ttl
}

// Store keeps at most one entry per key. Expired entries are returned as-is;
// freshness is decided by the caller.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry Entry) error
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Open returns the store for backend. A Redis backend that cannot be reached
// degrades to an in-process store.
func Open(ctx context.Context, backend, redisURL string, retention time.Duration) Store {
	if backend != BackendRedis {
		return NewMemoryStore()
	}
	client, err := NewRedisClient(ctx, redisURL)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory cache", "err", err)
		return NewMemoryStore()
	}
	return NewRedisStore(client, retention)
}
