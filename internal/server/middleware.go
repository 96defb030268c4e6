package server

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/rentora/internal/auth/domain"
	obscontext "github.com/smallbiznis/rentora/internal/observability/context"
	"github.com/smallbiznis/rentora/internal/observability/logger"
	"github.com/smallbiznis/rentora/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	headerAuthorization = "Authorization"
	headerRetryAfter    = "Retry-After"
	headerLimit         = "X-RateLimit-Limit"
	headerRemaining     = "X-RateLimit-Remaining"
)

// AuthRequired resolves the bearer token into an identity before any handler runs.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.verifier == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		identity, err := s.verifier.Verify(c.Request.Context(), c.GetHeader(headerAuthorization))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := authdomain.ContextWithIdentity(c.Request.Context(), identity)
		ctx = obscontext.WithActorID(ctx, identity.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// OfferSubmitRateLimit throttles offer submission per tenant when redis is configured.
func (s *Server) OfferSubmitRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		tenantID, ok := callerID(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		result, err := s.limiter.AllowSubmit(ctx, tenantID.String())
		if err != nil {
			logger.FromContext(ctx).Warn("offer rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if result == nil {
			c.Next()
			return
		}

		c.Header(headerLimit, strconv.Itoa(result.Limit))
		c.Header(headerRemaining, strconv.Itoa(result.Remaining))
		if !result.Allowed {
			c.Header(headerRetryAfter, retryAfterSeconds(result.RetryAfter))
			s.obsMetrics.RecordRateLimitDenied(ctx, c.FullPath(), "tenant-rate")
			AbortWithError(c, ratelimit.ErrRateLimited)
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

func callerID(c *gin.Context) (snowflake.ID, bool) {
	identity, ok := authdomain.IdentityFromContext(c.Request.Context())
	if !ok {
		return 0, false
	}
	return identity.UserID, true
}

// requireCaller aborts with 401 when the request carries no identity.
func requireCaller(c *gin.Context) (snowflake.ID, bool) {
	id, ok := callerID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return 0, false
	}
	return id, true
}

func statusCreated(c *gin.Context, body gin.H) {
	body["success"] = true
	c.JSON(http.StatusCreated, body)
}

func statusOK(c *gin.Context, body gin.H) {
	body["success"] = true
	c.JSON(http.StatusOK, body)
}
