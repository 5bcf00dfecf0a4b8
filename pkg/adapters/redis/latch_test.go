package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/gmboard/pkg/adapters/redis"
	"github.com/aretw0/gmboard/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, client
}

func TestRedisLatch_Contract(t *testing.T) {
	_, client := newMiniredis(t)
	ports.RunLatchContract(t, redis.NewFromClient(client))
}

func TestRedisLatch_KeyLifecycle(t *testing.T) {
	mr, client := newMiniredis(t)
	latch := redis.NewFromClient(client, redis.WithPrefix("test:"))
	ctx := context.Background()

	release, ok, err := latch.TryAcquire(ctx, "run-1", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("test:inflight:run-1"), "latch key should be set in Redis")

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("test:inflight:run-1"), "latch key should be removed after release")
}

func TestRedisLatch_ExpiresAfterTTL(t *testing.T) {
	mr, client := newMiniredis(t)
	latch := redis.NewFromClient(client)
	ctx := context.Background()

	_, ok, err := latch.TryAcquire(ctx, "run-ttl", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	release, ok, err := latch.TryAcquire(ctx, "run-ttl", time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "expired holder must not block the run forever")
	_ = release(ctx)
}

func TestRedisLatch_StaleReleaseKeepsNewHolder(t *testing.T) {
	mr, client := newMiniredis(t)
	latch := redis.NewFromClient(client)
	ctx := context.Background()

	staleRelease, ok, err := latch.TryAcquire(ctx, "run-x", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok, err = latch.TryAcquire(ctx, "run-x", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, staleRelease(ctx))
	assert.True(t, mr.Exists(redis.DefaultPrefix+"inflight:run-x"), "stale release must not drop the new holder's key")
}

func TestRedisLatch_ConnectionError(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr(), MaxRetries: -1})
	latch := redis.NewFromClient(client)
	mr.Close()

	_, ok, err := latch.TryAcquire(context.Background(), "run", time.Second)
	assert.False(t, ok)
	assert.ErrorIs(t, err, redis.ErrLatchAcquire)
}
