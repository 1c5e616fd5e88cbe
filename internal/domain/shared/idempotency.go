package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL is how long a claimed request key is remembered
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers client request keys so a retried request is
// applied once.
type IdempotencyStore interface {
	// Claim records key for ttl. It returns false when key is already claimed.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets key so the request can be retried
	Release(ctx context.Context, key string) error
	Close() error
}
