package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/flowedit/pkg/adapters/redis"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "doc1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:lock:doc1"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:doc1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:") // Same prefix -> contention
	ctx := context.Background()
	key := "shared-doc"

	unlock1, err := locker1.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)

	ctxTimeout, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = locker2.Lock(ctxTimeout, key, 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.WithinDuration(t, start.Add(500*time.Millisecond), time.Now(), 150*time.Millisecond, "Should block until timeout")

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	defer unlock2(ctx)

	assert.True(t, mr.Exists("test:lock:shared-doc"))
}

func TestRedisLocker_StaleUnlockKeepsNewHolder(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	stale, err := locker.Lock(ctx, "doc", time.Second)
	require.NoError(t, err)

	// The first lock expires and someone else takes it.
	mr.FastForward(2 * time.Second)
	fresh, err := locker.Lock(ctx, "doc", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, stale(ctx))
	assert.True(t, mr.Exists("test:lock:doc"), "A stale unlock must not release the new holder")

	require.NoError(t, fresh(ctx))
	assert.False(t, mr.Exists("test:lock:doc"))
}
