package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-builder/internal/shared/telemetry"
)

// RedisLimiter is a fixed-window counter shared across instances.
// A rule of Rate r and Burst b allows b requests per b/r seconds.
type RedisLimiter struct {
	Client *redis.Client
	Prefix string
	now    func() time.Time
}

// NewRedisLimiter builds a limiter from a redis URL such as redis://localhost:6379/0.
func NewRedisLimiter(redisURL string) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisLimiter{Client: redis.NewClient(opts), Prefix: "rl:", now: time.Now}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || l.Client == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := time.Now
	if l.now != nil {
		now = l.now
	}
	window := time.Duration(float64(rule.Burst) / rule.Rate * float64(time.Second))
	if window <= 0 {
		window = time.Second
	}
	current := now()
	slot := current.UnixNano() / int64(window)
	k := l.Prefix + key + ":" + strconv.FormatInt(slot, 10)

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open.
		telemetry.Warn("ratelimit.redis.failed", map[string]any{"err": err, "key": key})
		return true, 0
	}
	if incr.Val() <= int64(rule.Burst) {
		return true, 0
	}
	windowEnd := time.Unix(0, (slot+1)*int64(window))
	return false, windowEnd.Sub(current)
}

// Ping checks the redis connection.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.Client.Ping(ctx).Err()
}

// Close releases the redis client.
func (l *RedisLimiter) Close() error {
	if l == nil || l.Client == nil {
		return nil
	}
	return l.Client.Close()
}
