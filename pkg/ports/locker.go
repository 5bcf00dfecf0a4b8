package ports

import (
	"context"
	"time"
)

// ReleaseFunc releases a latch acquired with TryAcquire.
type ReleaseFunc func(ctx context.Context) error

// Latch gates generation requests so that at most one is in flight per key (the run ID).
// TryAcquire never blocks waiting for the holder: a busy latch returns ok == false,
// and the caller drops its request instead of queueing it.
type Latch interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release ReleaseFunc, ok bool, err error)
}
