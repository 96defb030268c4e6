package ratelimit

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/smallbiznis/rentora/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNilOfferLimiterAllowsEverything(t *testing.T) {
	limiter, err := NewOfferLimiter(config.Config{}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, limiter.Enabled())

	res, err := limiter.AllowSubmit(context.Background(), "7")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	release, err := limiter.LockOffer(context.Background(), 1)
	require.NoError(t, err)
	release()
}

func TestEmissionInterval(t *testing.T) {
	got, err := emissionInterval(0.2)
	require.NoError(t, err)
	assert.InDelta(t, 5000.0, got, 0.0001)

	for _, rate := range []float64{0, -1, math.Inf(1), math.NaN()} {
		_, err := emissionInterval(rate)
		assert.Error(t, err, "rate %v", rate)
	}
}

func TestParseGCRAReply(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	allowed, err := parseGCRAReply([]int64{1, 4, 0, 5000}, 5, now)
	require.NoError(t, err)
	assert.True(t, allowed.Allowed)
	assert.Equal(t, 5, allowed.Limit)
	assert.Equal(t, 4, allowed.Remaining)
	assert.Zero(t, allowed.RetryAfter)
	assert.Equal(t, now.Add(5*time.Second), allowed.ResetTime)

	denied, err := parseGCRAReply([]int64{0, 0, 1500, 25000}, 5, now)
	require.NoError(t, err)
	assert.False(t, denied.Allowed)
	assert.Equal(t, 1500*time.Millisecond, denied.RetryAfter)

	_, err = parseGCRAReply([]int64{1}, 5, now)
	assert.Error(t, err)
}

func TestNilThrottleRefuses(t *testing.T) {
	var throttle *Throttle
	_, err := throttle.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
	assert.Nil(t, NewThrottle(nil))
}
