package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisKeyPrefix      = "helpdesk:lock:"
	redisReleaseTimeout = 2 * time.Second
)

// releaseScript deletes the lease only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker leases keys with SET NX PX so several instances can share a
// ticket store. A lease expires after ttl even if its holder dies.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	logger *zap.Logger
}

// NewRedisLocker builds a RedisLocker.
func NewRedisLocker(client *redis.Client, ttl, retry time.Duration, logger *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	return &RedisLocker{client: client, ttl: ttl, retry: retry, logger: logger}
}

// Acquire polls until the lease is granted or ctx is done.
func (r *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := redisKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), redisReleaseTimeout)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			r.logger.Warn("release lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
