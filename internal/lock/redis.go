package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frontdesk-rental-backend/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL   = time.Minute
	defaultRetryWait = 50 * time.Millisecond
	maxRetryWait     = 500 * time.Millisecond
	lockKeyPrefix    = "frontdesk:lock:"
)

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// RedisClient is the subset of go-redis used by RedisLocker.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisLocker is a Locker shared by every instance pointing at the same Redis.
// A lock expires after its TTL so a crashed holder cannot block a rental forever.
type RedisLocker struct {
	client RedisClient
	ttl    time.Duration
}

func NewRedisLocker(client RedisClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Lock retries with backoff until the key is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := lockKeyPrefix + key
	token := uuid.New().String()
	wait := defaultRetryWait

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
		case <-timer.C:
		}
		wait = min(wait*2, maxRetryWait)
	}

	return func() {
		// Release on a fresh context: the request context may already be done.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.client.Eval(rctx, releaseScript, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			logger.Warn("Failed to release redis lock", "key", key, "error", err)
		}
	}, nil
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
