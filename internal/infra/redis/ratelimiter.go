package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/ustamapp/ustamapp-client/internal/ratelimit"
)

const (
	defaultLimit  int64 = 20
	defaultWindow       = time.Minute
)

// The first hit in a window sets its expiry so stale counters vanish.
var allowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.Limiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window counter shared by every mock backend
// instance that points at the same Redis.
type RateLimiter struct {
	client *goredis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
	script *goredis.Script
}

func NewRateLimiter(client *goredis.Client, limit int, window time.Duration) (*RateLimiter, error) {
	return newRateLimiter(client, int64(limit), window, time.Now)
}

func newRateLimiter(client *goredis.Client, limit int64, window time.Duration, nowFn func() time.Time) (*RateLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if window < time.Second {
		window = defaultWindow
	}
	if nowFn == nil {
		nowFn = time.Now
	}

	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		now:    nowFn,
		script: allowScript,
	}, nil
}

func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r == nil || r.client == nil || r.script == nil {
		return false, fmt.Errorf("rate limiter is not initialized")
	}

	normalizedKey := strings.TrimSpace(key)
	if normalizedKey == "" {
		return false, fmt.Errorf("rate limit key is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	windowStart := r.now().UTC().Unix() / int64(r.window/time.Second)
	redisKey := fmt.Sprintf("%s:ratelimit:%s:%d", defaultKeyPrefix, normalizedKey, windowStart)
	result, err := r.script.Run(ctx, r.client, []string{redisKey}, r.limit, int64(r.window/time.Second)).Int()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}

	return result == 1, nil
}
