package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLatchContract runs a suite of tests to verify that a Latch implementation
// adheres to the defined interface contract.
func RunLatchContract(t *testing.T, latch Latch) {
	ctx := context.Background()
	key := "contract-test-run-" + time.Now().Format("20060102150405.000000000")

	t.Run("Acquire and Release", func(t *testing.T) {
		release, ok, err := latch.TryAcquire(ctx, key, time.Minute)
		require.NoError(t, err)
		require.True(t, ok, "first acquire should succeed")
		require.NoError(t, release(ctx))

		release, ok, err = latch.TryAcquire(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "acquire after release should succeed")
		require.NoError(t, release(ctx))
	})

	t.Run("Busy Is Not Queued", func(t *testing.T) {
		release, ok, err := latch.TryAcquire(ctx, key, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		defer func() { _ = release(ctx) }()

		start := time.Now()
		second, ok, err := latch.TryAcquire(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok, "second acquire must report busy")
		assert.Nil(t, second)
		assert.Less(t, time.Since(start), time.Second, "busy latch must not block")
	})

	t.Run("Keys Are Independent", func(t *testing.T) {
		r1, ok1, err := latch.TryAcquire(ctx, key+"-a", time.Minute)
		require.NoError(t, err)
		r2, ok2, err := latch.TryAcquire(ctx, key+"-b", time.Minute)
		require.NoError(t, err)

		assert.True(t, ok1)
		assert.True(t, ok2)
		_ = r1(ctx)
		_ = r2(ctx)
	})
}
