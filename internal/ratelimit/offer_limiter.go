package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/rentora/internal/config"
	"go.uber.org/zap"
)

const (
	keyOfferSubmitTenant = "offer:submit:tenant:%s"
	keyOfferLock         = "offer:lock:%d"
)

var (
	ErrOfferLocked  = errors.New("offer_locked")
	ErrRateLimited  = errors.New("rate_limited")
	errLimiterInput = errors.New("offer limiter misconfigured")
)

// OfferLimiter throttles offer submission per tenant and serializes
// lifecycle mutations per offer. A nil or disabled limiter allows everything.
type OfferLimiter struct {
	throttle *Throttle
	mutex    *offerMutex
	log      *zap.Logger

	submitRate  float64
	submitBurst int
}

func NewOfferLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) (*OfferLimiter, error) {
	if client == nil {
		return nil, nil
	}
	if cfg.OfferSubmitRate <= 0 || cfg.OfferSubmitBurst <= 0 {
		return nil, fmt.Errorf("%w: submit rate and burst must be positive", errLimiterInput)
	}
	lockTTL := time.Duration(cfg.OfferLockTTLSec) * time.Second
	if lockTTL <= 0 {
		lockTTL = 5 * time.Second
	}

	return &OfferLimiter{
		throttle:    NewThrottle(client),
		mutex:       newOfferMutex(client, lockTTL),
		log:         log.Named("offer.limiter"),
		submitRate:  cfg.OfferSubmitRate,
		submitBurst: cfg.OfferSubmitBurst,
	}, nil
}

func (l *OfferLimiter) Enabled() bool {
	return l != nil && l.throttle != nil
}

// AllowSubmit consumes one submission token for the tenant.
func (l *OfferLimiter) AllowSubmit(ctx context.Context, tenantID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.throttle.Allow(ctx, fmt.Sprintf(keyOfferSubmitTenant, tenantID), l.submitRate, l.submitBurst)
}

// LockOffer takes the per-offer mutation lock. The returned release is safe to call on any path.
func (l *OfferLimiter) LockOffer(ctx context.Context, offerID int64) (func(), error) {
	if !l.Enabled() {
		return func() {}, nil
	}

	key := fmt.Sprintf(keyOfferLock, offerID)
	token, err := l.mutex.acquire(ctx, key)
	if err != nil {
		return nil, err
	}

	return func() {
		// Release on a fresh context so a cancelled request still frees the key.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := l.mutex.release(releaseCtx, key, token); err != nil {
			l.log.Warn("release offer lock failed", zap.Int64("offer_id", offerID), zap.Error(err))
		}
	}, nil
}
