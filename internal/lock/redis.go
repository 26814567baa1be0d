package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const redisKeyPrefix = "itrun:lock:"

// compare-and-delete so a holder never removes a lock that expired and was re-taken
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker shares locks between API replicas through redis SET NX PX
type RedisLocker struct {
	client redis.Cmdable
	wait   time.Duration
	ttl    time.Duration
	retry  time.Duration
	logger *zap.Logger
}

// NewRedisLocker creates a RedisLocker. ttl bounds how long a crashed holder blocks a key.
func NewRedisLocker(client redis.Cmdable, wait, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		client: client,
		wait:   wait,
		ttl:    ttl,
		retry:  25 * time.Millisecond,
		logger: logger,
	}
}

// Acquire implements Locker
func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.take(ctx, redisKeyPrefix+key, token, deadline); err != nil {
			l.releaseAll(held, token)
			return nil, err
		}
		held = append(held, redisKeyPrefix+key)
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.releaseAll(held, token) })
	}, nil
}

func (l *RedisLocker) take(ctx context.Context, key, token string, deadline time.Time) error {
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrBusy
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *RedisLocker) releaseAll(keys []string, token string) {
	// the request context may already be cancelled when release runs
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := len(keys) - 1; i >= 0; i-- {
		if err := releaseScript.Run(ctx, l.client, []string{keys[i]}, token).Err(); err != nil && err != redis.Nil {
			l.logger.Warn("Failed to release redis lock",
				zap.String("key", keys[i]),
				zap.Error(err),
			)
		}
	}
}
