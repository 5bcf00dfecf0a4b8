package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/gmboard/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLatchAcquire is returned when Redis cannot be reached while acquiring the latch.
	ErrLatchAcquire = errors.New("failed to acquire distributed latch")
)

// DefaultPrefix namespaces latch keys.
const DefaultPrefix = "gmboard:"

// releaseScript deletes the key only if we still own it.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Latch implements ports.Latch using Redis SET NX PX.
// It lets several server replicas agree that a run has a request in flight.
type Latch struct {
	client *backend.Client
	prefix string
}

// Option configures the Latch.
type Option func(*Latch)

// WithPrefix sets the key prefix for latches.
func WithPrefix(prefix string) Option {
	return func(l *Latch) {
		l.prefix = prefix
	}
}

// New creates a Redis latch connected to address.
func New(address, password string, db int, opts ...Option) *Latch {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis latch from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Latch {
	l := &Latch{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Latch) key(key string) string {
	return l.prefix + "inflight:" + key
}

// TryAcquire makes a single SET NX attempt; it never polls.
// The TTL bounds how long a crashed holder can keep the run busy.
func (l *Latch) TryAcquire(ctx context.Context, key string, ttl time.Duration) (ports.ReleaseFunc, bool, error) {
	latchKey := l.key(key)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, latchKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrLatchAcquire, err)
	}
	if !ok {
		return nil, false, nil
	}

	return func(ctx context.Context) error {
		return l.client.Eval(ctx, releaseScript, []string{latchKey}, token).Err()
	}, true, nil
}

// Close closes the redis client.
func (l *Latch) Close() error {
	return l.client.Close()
}
