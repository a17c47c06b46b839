package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL   = 30 * time.Second
	defaultRetry = 50 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another process is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every API and worker instance.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
}

type RedisOption func(*Redis)

// WithRetryInterval sets how long Acquire waits between SET NX attempts.
func WithRetryInterval(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.retry = d
		}
	}
}

// NewRedis returns a Locker whose keys expire after ttl if never released.
func NewRedis(client redis.UniversalClient, ttl time.Duration, opts ...RedisOption) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	r := &Redis{client: client, ttl: ttl, retry: defaultRetry}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return r.releaser(key, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %s: %w: %w", key, ErrNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *Redis) releaser(key, token string) func() {
	return func() {
		// The caller's ctx may already be cancelled; release must still run.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
			slog.Warn("failed to release lock", "key", key, "error", err)
		}
	}
}
