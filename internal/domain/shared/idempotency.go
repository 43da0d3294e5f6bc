package shared

import (
	"context"
	"time"
)

// IdempotencyStore tracks keys that have already been processed so that
// retried requests are not applied twice.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Release forgets a key so the request can be retried. Called when
	// processing fails after the key was marked.
	Release(ctx context.Context, key string) error
}
