package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var (
	errBucketUnavailable = errors.New("token bucket has no redis client")
	errBucketLimits      = errors.New("token bucket needs a positive rate and burst")
	errBucketReply       = errors.New("unexpected token bucket reply")
)

// The bucket is refilled with Redis server time so replicas of the app agree
// on it. Tokens go back as a string to keep the fraction.
var takeToken = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local clock = redis.call("TIME")
local now = clock[1] * 1000 + math.floor(clock[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local last = tonumber(state[2]) or now
tokens = math.min(burst, tokens + math.max(0, now - last) / 1000 * rate)

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
redis.call("PEXPIRE", KEYS[1], ttl)
return {allowed, tostring(tokens)}
`)

// decision is the outcome of taking one token.
type decision struct {
	allowed    bool
	remaining  float64
	retryAfter time.Duration
}

type tokenBucket struct {
	client redis.Scripter
	rate   float64
	burst  int
}

func newTokenBucket(client redis.Scripter, rate float64, burst int) *tokenBucket {
	return &tokenBucket{client: client, rate: rate, burst: burst}
}

func (b *tokenBucket) take(ctx context.Context, key string) (decision, error) {
	if b == nil || b.client == nil {
		return decision{}, errBucketUnavailable
	}
	if b.rate <= 0 || b.burst <= 0 {
		return decision{}, errBucketLimits
	}

	reply, err := takeToken.Run(ctx, b.client, []string{key},
		b.rate, b.burst, bucketTTL(b.rate, b.burst).Milliseconds()).Slice()
	if err != nil {
		return decision{}, err
	}
	if len(reply) != 2 {
		return decision{}, errBucketReply
	}

	allowed, ok := reply[0].(int64)
	if !ok {
		return decision{}, errBucketReply
	}
	raw, ok := reply[1].(string)
	if !ok {
		return decision{}, errBucketReply
	}
	remaining, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return decision{}, errBucketReply
	}

	d := decision{allowed: allowed == 1, remaining: remaining}
	if !d.allowed {
		d.retryAfter = refillWait(remaining, b.rate)
	}
	return d, nil
}

// refillWait is the time until one whole token is back.
func refillWait(remaining, rate float64) time.Duration {
	missing := 1 - remaining
	if missing <= 0 || rate <= 0 {
		return 0
	}
	return time.Duration(missing / rate * float64(time.Second))
}

// bucketTTL keeps idle buckets around for twice the time a full refill takes.
func bucketTTL(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	seconds := math.Max(1, math.Ceil(float64(burst)/rate*2))
	return time.Duration(seconds) * time.Second
}
