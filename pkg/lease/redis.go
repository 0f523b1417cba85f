package lease

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "voice-agent:session:lease"

var (
	refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)
)

// RedisLease shares the lease between instances through a Redis key.
type RedisLease struct {
	rdb *redis.Client
	key string
}

func NewRedisLease(rdb *redis.Client, key string) *RedisLease {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisLease{rdb: rdb, key: key}
}

func (l *RedisLease) Acquire(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.key, holder, ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return l.Refresh(ctx, holder, ttl)
}

func (l *RedisLease) Refresh(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	n, err := refreshScript.Run(ctx, l.rdb, []string{l.key}, holder, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (l *RedisLease) Release(ctx context.Context, holder string) error {
	return releaseScript.Run(ctx, l.rdb, []string{l.key}, holder).Err()
}

func (l *RedisLease) Holder(ctx context.Context) (string, bool, error) {
	holder, err := l.rdb.Get(ctx, l.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return holder, true, nil
}
