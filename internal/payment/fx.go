package payment

import (
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
	paymentdomain "github.com/smallbiznis/rentora/internal/payment/domain"
	"github.com/smallbiznis/rentora/internal/payment/repository"
	"github.com/smallbiznis/rentora/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(func(svc paymentdomain.Service) offerdomain.PaymentState { return svc }),
)
