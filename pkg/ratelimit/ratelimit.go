// Package ratelimit implements a per-client token bucket stored in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenBucketLua = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local data = redis.call("HMGET", key, "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])
if tokens == nil then
  tokens = burst
end
if ts == nil then
  ts = now
end

local delta = math.max(0, now - ts)
tokens = math.min(burst, tokens + (delta * rate) / 1000.0)

local allowed = tokens >= 1
local wait_ms = 0
if allowed then
  tokens = tokens - 1
else
  wait_ms = math.ceil((1 - tokens) * 1000.0 / rate)
end

redis.call("HSET", key, "tokens", tostring(tokens), "ts", now)
redis.call("PEXPIRE", key, math.ceil((burst / rate) * 1000.0 * 2))

return {allowed and 1 or 0, wait_ms}
`

// Limiter admits requests per key without blocking.
type Limiter struct {
	rdb    redis.UniversalClient
	prefix string
	rate   float64
	burst  float64
	now    func() time.Time
	script *redis.Script
}

// New returns a limiter refilling rate tokens per second up to burst.
// A nil client or a non-positive rate/burst disables limiting.
func New(rdb redis.UniversalClient, prefix string, rate, burst float64) *Limiter {
	if prefix == "" {
		prefix = "productivity:ratelimit:"
	}
	return &Limiter{
		rdb:    rdb,
		prefix: prefix,
		rate:   rate,
		burst:  burst,
		now:    time.Now,
		script: redis.NewScript(tokenBucketLua),
	}
}

// Enabled reports whether Allow can ever reject.
func (l *Limiter) Enabled() bool {
	return l != nil && l.rdb != nil && l.rate > 0 && l.burst > 0
}

// Allow takes one token for key. When the bucket is empty it returns false and
// how long until the next token.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if !l.Enabled() {
		return true, 0, nil
	}
	res, err := l.script.Run(ctx, l.rdb, []string{l.prefix + key}, l.rate, l.burst, l.now().UnixMilli()).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit eval: %w", err)
	}
	values, ok := res.([]any)
	if !ok || len(values) < 2 {
		return false, 0, fmt.Errorf("ratelimit invalid result %v", res)
	}
	allowed := toInt64(values[0]) == 1
	wait := time.Duration(toInt64(values[1])) * time.Millisecond
	return allowed, wait, nil
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
