package ratelimit

import (
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewRedisClient),
	fx.Provide(NewOfferLimiter),
	fx.Provide(func(l *OfferLimiter) offerdomain.MutationLocker { return l }),
)
