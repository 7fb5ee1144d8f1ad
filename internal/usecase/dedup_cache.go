package usecase

import (
	"context"
	"time"
)

// DedupCache is the redis-backed reservation used as the notification
// dedup fast path. A nil or unavailable cache degrades to the storage
// probe alone.
type DedupCache interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}
