package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisFixedWindowScript counts hits in a fixed window keyed by the limiter
// key. INCR + first-hit EXPIRE keeps the whole check to one round trip.
var redisFixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

type redisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) Limiter {
	return &redisLimiter{client: client}
}

func (l *redisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	res, err := redisFixedWindowScript.Run(ctx, l.client, []string{"ratelimit:" + key}, window.Milliseconds()).Slice()
	if err != nil {
		return Decision{}, err
	}
	count, _ := res[0].(int64)
	ttlMs, _ := res[1].(int64)
	retryAfter := time.Duration(ttlMs) * time.Millisecond
	if retryAfter < 0 {
		retryAfter = window
	}
	if count > int64(limit) {
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}
	return Decision{Allowed: true, Remaining: limit - int(count)}, nil
}
