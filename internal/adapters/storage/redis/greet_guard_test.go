package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T, ttl time.Duration) (*GreetGuard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewGreetGuard(rdb, ttl), mr
}

func TestGreetGuardOncePerUser(t *testing.T) {
	ctx := context.Background()
	g, mr := newTestGuard(t, time.Hour)

	ok, err := g.Acquire(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("eco:greeted:user-1"))

	ok, err = g.Acquire(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.Acquire(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGreetGuardExpires(t *testing.T) {
	ctx := context.Background()
	g, mr := newTestGuard(t, time.Minute)

	ok, _ := g.Acquire(ctx, "user-1")
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err := g.Acquire(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGreetGuardResetAndAnonymous(t *testing.T) {
	ctx := context.Background()
	g, mr := newTestGuard(t, 0)

	ok, _ := g.Acquire(ctx, "user-1")
	require.True(t, ok)
	require.NoError(t, g.Reset(ctx, "user-1"))

	ok, _ = g.Acquire(ctx, "user-1")
	assert.True(t, ok)

	for i := 0; i < 3; i++ {
		ok, err := g.Acquire(ctx, "")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.False(t, mr.Exists("eco:greeted:"))
}

func TestGreetGuardConcurrentSingleWinner(t *testing.T) {
	g, _ := newTestGuard(t, time.Hour)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := g.Acquire(context.Background(), "user-1"); err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestGreetGuardRedisDown(t *testing.T) {
	g, mr := newTestGuard(t, time.Hour)
	mr.Close()

	_, err := g.Acquire(context.Background(), "user-1")
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	_ = rdb.Close()

	_, err = NewClient(context.Background(), "")
	assert.Error(t, err)
}
