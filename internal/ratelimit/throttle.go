package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// gcraScript keeps one theoretical arrival time (ms) per key.
// ARGV: emission interval ms, burst. Returns {allowed, remaining, retry_ms, reset_ms}.
const gcraScript = `
local emission = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local tolerance = emission * burst

local t = redis.call("TIME")
local now = (t[1] * 1000) + math.floor(t[2] / 1000)

local tat = tonumber(redis.call("GET", KEYS[1]))
if tat == nil or tat < now then
  tat = now
end

local nextTat = tat + emission
local allowAt = nextTat - tolerance
if now < allowAt then
  return {0, 0, math.ceil(allowAt - now), math.ceil(tat - now)}
end

redis.call("SET", KEYS[1], tostring(nextTat), "PX", math.ceil(nextTat - now))
local remaining = math.floor((now - (nextTat - tolerance)) / emission)
return {1, remaining, 0, math.ceil(nextTat - now)}
`

type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Throttle is a redis backed GCRA limiter: rate tokens per second with
// bursts of up to burst requests.
type Throttle struct {
	client *redis.Client
	script *redis.Script
	now    func() time.Time
}

func NewThrottle(client *redis.Client) *Throttle {
	if client == nil {
		return nil
	}
	return &Throttle{
		client: client,
		script: redis.NewScript(gcraScript),
		now:    time.Now,
	}
}

func (t *Throttle) Allow(ctx context.Context, key string, rate float64, burst int) (*RateLimitResult, error) {
	if t == nil || t.client == nil {
		return nil, errors.New("throttle not configured")
	}
	emission, err := emissionInterval(rate)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errors.New("throttle key is empty")
	}
	if burst <= 0 {
		return nil, errors.New("throttle burst must be positive")
	}

	res, err := t.script.Run(ctx, t.client, []string{key}, emission, burst).Int64Slice()
	if err != nil {
		return nil, err
	}
	return parseGCRAReply(res, burst, t.now())
}

// emissionInterval is the spacing between tokens in milliseconds.
func emissionInterval(rate float64) (float64, error) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, errors.New("throttle rate must be positive")
	}
	return 1000 / rate, nil
}

func parseGCRAReply(res []int64, burst int, now time.Time) (*RateLimitResult, error) {
	if len(res) != 4 {
		return nil, errors.New("unexpected throttle reply")
	}
	retry := time.Duration(res[2]) * time.Millisecond
	return &RateLimitResult{
		Allowed:    res[0] == 1,
		Limit:      burst,
		Remaining:  int(res[1]),
		ResetTime:  now.Add(time.Duration(res[3]) * time.Millisecond),
		RetryAfter: retry,
	}, nil
}
