package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentora/internal/audit"
	auditdomain "github.com/smallbiznis/rentora/internal/audit/domain"
	"github.com/smallbiznis/rentora/internal/auth"
	authdomain "github.com/smallbiznis/rentora/internal/auth/domain"
	"github.com/smallbiznis/rentora/internal/config"
	"github.com/smallbiznis/rentora/internal/directory"
	"github.com/smallbiznis/rentora/internal/observability"
	obslogger "github.com/smallbiznis/rentora/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rentora/internal/observability/metrics"
	obstracing "github.com/smallbiznis/rentora/internal/observability/tracing"
	"github.com/smallbiznis/rentora/internal/offer"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
	"github.com/smallbiznis/rentora/internal/payment"
	paymentdomain "github.com/smallbiznis/rentora/internal/payment/domain"
	"github.com/smallbiznis/rentora/internal/ratelimit"
	"github.com/smallbiznis/rentora/internal/rent"
	rentdomain "github.com/smallbiznis/rentora/internal/rent/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func init() {
	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	auth.Module,
	directory.Module,
	ratelimit.Module,
	offer.Module,
	payment.Module,
	rent.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	verifier   authdomain.Verifier
	offerSvc   offerdomain.Service
	paymentSvc paymentdomain.Service
	rentSvc    rentdomain.Service
	auditSvc   auditdomain.Service
	limiter    *ratelimit.OfferLimiter
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Verifier   authdomain.Verifier
	OfferSvc   offerdomain.Service
	PaymentSvc paymentdomain.Service
	RentSvc    rentdomain.Service
	AuditSvc   auditdomain.Service
	Limiter    *ratelimit.OfferLimiter `optional:"true"`
	ObsMetrics *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		verifier:   p.Verifier,
		offerSvc:   p.OfferSvc,
		paymentSvc: p.PaymentSvc,
		rentSvc:    p.RentSvc,
		auditSvc:   p.AuditSvc,
		limiter:    p.Limiter,
		obsMetrics: p.ObsMetrics,
	}

	svc.registerOfferRoutes()
	svc.registerPaymentRoutes()
	svc.registerRentRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerOfferRoutes() {
	offers := s.engine.Group("/offers", s.AuthRequired())

	offers.POST("", s.OfferSubmitRateLimit(), s.CreateOffer)
	offers.GET("/received", s.ListReceivedOffers)
	offers.GET("/sent", s.ListSentOffers)
	offers.GET("/history/:propertyId/:tenantId", s.GetOfferHistory)
	offers.GET("/:offerId", s.GetOffer)
	offers.PATCH("/:offerId/request-advance", s.RequestAdvance)
	offers.PATCH("/:offerId/status", s.SetOfferStatus)
	offers.PATCH("/:offerId/confirm-move-in", s.ConfirmMoveIn)
	offers.GET("/:offerId/audit-logs", s.ListOfferAuditLogs)

	offers.POST("/:offerId/payments", s.CreatePaymentTransaction)
	offers.GET("/:offerId/payments", s.ListPaymentTransactions)
	offers.POST("/:offerId/reconcile-booking", s.ReconcileBooking)

	offers.POST("/:offerId/rent-schedule", s.GenerateRentSchedule)
	offers.GET("/:offerId/rent-records", s.ListRentRecords)
}

func (s *Server) registerPaymentRoutes() {
	payments := s.engine.Group("/payments", s.AuthRequired())

	payments.PATCH("/:transactionId/mark-paid", s.MarkPaymentPaid)
	payments.PATCH("/:transactionId/verify", s.VerifyPayment)
}

func (s *Server) registerRentRoutes() {
	records := s.engine.Group("/rent-records", s.AuthRequired())

	records.PATCH("/:recordId/mark-paid", s.MarkRentRecordPaid)
}
