package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/homi/internal/logger"
	"github.com/baechuer/homi/internal/ratelimit"
)

// FixedWindowLimiter shares counters across processes:
// INCR key; if count == 1 then PEXPIRE key window.
// The window starts at the first hit for the key, matching ratelimit.MemoryLimiter.
type FixedWindowLimiter struct {
	rdb    *goredis.Client
	prefix string
}

func NewFixedWindowLimiter(c *Client) *FixedWindowLimiter {
	if c == nil {
		return &FixedWindowLimiter{rdb: nil, prefix: "rl"}
	}
	return &FixedWindowLimiter{rdb: c.rdb, prefix: "rl"}
}

// Lua to ensure atomic INCR + set expire on first hit
// returns: {count, ttl_ms}
const fixedWindowLua = `
local c = redis.call("INCR", KEYS[1])
if c == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {c, ttl}
`

func (l *FixedWindowLimiter) Allow(ctx context.Context, p ratelimit.Policy, key string) (ratelimit.Decision, error) {
	if p.Limit <= 0 {
		return ratelimit.Decision{Allowed: true, Limit: p.Limit, Remaining: p.Limit}, nil
	}
	p = ratelimit.Normalize(p)
	window := p.Window
	if l.rdb == nil {
		// Redis disabled => allow (fail-open).
		return ratelimit.Decision{Allowed: true, Limit: p.Limit, Remaining: p.Limit}, nil
	}

	ttlms := max(window.Milliseconds(), 1)

	k := fmt.Sprintf("%s:%s:%s", l.prefix, p.Name, key)
	res, err := l.rdb.Eval(ctx, fixedWindowLua, []string{k}, ttlms).Result()
	if err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("policy", p.Name).Msg("ratelimit redis eval failed; allowing")
		return ratelimit.Decision{Allowed: true, Limit: p.Limit, Remaining: p.Limit}, nil
	}

	arr, ok := res.([]any)
	if !ok || len(arr) != 2 {
		return ratelimit.Decision{}, fmt.Errorf("ratelimit redis eval: unexpected result type %T", res)
	}
	count, ok1 := arr[0].(int64)
	ttlRaw, ok2 := arr[1].(int64)
	if !ok1 || !ok2 {
		return ratelimit.Decision{}, fmt.Errorf("ratelimit redis eval: unexpected element types")
	}
	ttl := time.Duration(ttlRaw) * time.Millisecond

	d := ratelimit.Decision{
		Allowed:   int(count) <= p.Limit,
		Limit:     p.Limit,
		Remaining: max(0, p.Limit-int(count)),
		ResetAt:   time.Now().Add(ttl),
	}
	if !d.Allowed {
		if ttl > 0 {
			d.RetryAfter = ttl
		} else {
			d.RetryAfter = window
		}
	}
	return d, nil
}
