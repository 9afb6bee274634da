// Package cache stores consolidated lookup candidates between calls.
package cache

import (
	"context"
	"time"

	"callerid_backend/internal/lookup/consolidate"
)

// Cache keeps the per-source candidates of a lookup for a limited time.
type Cache interface {
	Get(ctx context.Context, key string) (consolidate.Candidates, bool, error)
	Set(ctx context.Context, key string, c consolidate.Candidates, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
