// Package ratelimit is the expiring-key store behind the @limit
// directive. A key present in the store means the slot is taken.
package ratelimit

import (
	"context"
	"time"
)

type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	SetWithTTL(ctx context.Context, key string, ttl time.Duration) error
}
