// Package cache defines the port interface for the idempotency response store.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values by key. A miss is reported as found=false
// with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
