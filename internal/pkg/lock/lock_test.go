package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "payroll:salary:emp-1:2024-06", SalaryKey("emp-1", 6, 2024))
	assert.Equal(t, "payroll:advance:adv-9", AdvanceKey("adv-9"))
}

func newRedisLocker(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, time.Second, WithRetryInterval(5*time.Millisecond)), mr
}

func lockers(t *testing.T) map[string]Locker {
	r, _ := newRedisLocker(t)
	return map[string]Locker{
		"local": NewLocal(),
		"redis": r,
	}
}

func TestLocker_ExclusiveUntilRelease(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			release, err := l.Acquire(ctx, "k")
			require.NoError(t, err)

			waitCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
			defer cancel()
			_, err = l.Acquire(waitCtx, "k")
			assert.Error(t, err)

			other, err := l.Acquire(ctx, "other")
			require.NoError(t, err)
			other()

			release()
			release() // second call is harmless

			again, err := l.Acquire(ctx, "k")
			require.NoError(t, err)
			again()
		})
	}
}

func TestLocker_SerializesCriticalSection(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			var (
				inside  int32
				overlap int32
				wg      sync.WaitGroup
			)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					release, err := l.Acquire(context.Background(), "shared")
					if !assert.NoError(t, err) {
						return
					}
					if atomic.AddInt32(&inside, 1) > 1 {
						atomic.StoreInt32(&overlap, 1)
					}
					time.Sleep(2 * time.Millisecond)
					atomic.AddInt32(&inside, -1)
					release()
				}()
			}
			wg.Wait()
			assert.Zero(t, atomic.LoadInt32(&overlap))
		})
	}
}

func TestRedis_ExpiredLockNotReleasedByStaleHolder(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	fresh, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	defer fresh()

	stale()
	assert.True(t, mr.Exists("k"), "stale release must not delete the new holder's key")
}

func TestLocal_ForgetsIdleKeys(t *testing.T) {
	l := NewLocal()
	release, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	release()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.slots)
}
