package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	authdomain "github.com/smallbiznis/rentora/internal/auth/domain"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	"github.com/smallbiznis/rentora/internal/observability/logger"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
	paymentdomain "github.com/smallbiznis/rentora/internal/payment/domain"
	"github.com/smallbiznis/rentora/internal/ratelimit"
	rentdomain "github.com/smallbiznis/rentora/internal/rent/domain"
	"go.uber.org/zap"
)

type errorResponse struct {
	Message string `json:"message"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

const internalErrorMessage = "Internal server error"

// RequestError is a malformed request body or path parameter.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func newRequestError(format string, args ...any) error {
	return &RequestError{Message: fmt.Sprintf(format, args...)}
}

type errorMapping struct {
	err     error
	status  int
	kind    string
	message string
}

var errorTable = []errorMapping{
	{ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Unauthorized"},
	{authdomain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Unauthorized"},
	{authdomain.ErrMissingToken, http.StatusUnauthorized, "unauthorized", "Unauthorized"},
	{authdomain.ErrInvalidToken, http.StatusUnauthorized, "unauthorized", "Unauthorized"},
	{authdomain.ErrTokenExpired, http.StatusUnauthorized, "unauthorized", "Unauthorized"},

	{offerdomain.ErrForbidden, http.StatusForbidden, "forbidden", "You are not allowed to modify this offer"},
	{paymentdomain.ErrForbidden, http.StatusForbidden, "forbidden", "You are not allowed to access this payment"},
	{rentdomain.ErrForbidden, http.StatusForbidden, "forbidden", "You are not allowed to access this rent record"},

	{offerdomain.ErrOfferNotFound, http.StatusNotFound, "not_found", "Offer not found"},
	{directorydomain.ErrPropertyNotFound, http.StatusNotFound, "not_found", "Property not found"},
	{paymentdomain.ErrTransactionNotFound, http.StatusNotFound, "not_found", "Payment transaction not found"},
	{rentdomain.ErrRecordNotFound, http.StatusNotFound, "not_found", "Rent record not found"},

	{offerdomain.ErrConflict, http.StatusConflict, "conflict", "Offer was modified concurrently, retry"},
	{ratelimit.ErrOfferLocked, http.StatusConflict, "conflict", "Offer is being updated, retry"},
	{ratelimit.ErrRateLimited, http.StatusTooManyRequests, "rate_limited", "Too many offers, slow down"},
	{ErrServiceUnavailable, http.StatusServiceUnavailable, "service_unavailable", "Service unavailable"},

	{offerdomain.ErrInvalidID, http.StatusBadRequest, "validation", "Invalid offer id"},
	{offerdomain.ErrInvalidPropertyID, http.StatusBadRequest, "validation", "Invalid property id"},
	{offerdomain.ErrInvalidTenantID, http.StatusBadRequest, "validation", "Invalid tenant id"},
	{offerdomain.ErrInvalidOfferRent, http.StatusBadRequest, "validation", "Offer rent must be a positive amount with at most two decimals"},
	{offerdomain.ErrInvalidJoiningDate, http.StatusBadRequest, "validation", "Joining date estimate is required"},
	{offerdomain.ErrInvalidAmount, http.StatusBadRequest, "validation", "Amounts must be non-negative with at most two decimals"},
	{offerdomain.ErrOwnProperty, http.StatusBadRequest, "validation", "You cannot make an offer on your own property"},
	{offerdomain.ErrInvalidStatus, http.StatusBadRequest, "validation", "Invalid status"},
	{offerdomain.ErrStatusRequired, http.StatusBadRequest, "validation", "status is required"},
	{offerdomain.ErrMalformedBody, http.StatusBadRequest, "validation", "Invalid request body"},
	{offerdomain.ErrInvalidActionType, http.StatusBadRequest, "validation", "Invalid action type"},
	{offerdomain.ErrInvalidAdvanceAmount, http.StatusBadRequest, "validation", "Advance amount must be a positive amount with at most two decimals"},
	{offerdomain.ErrInvalidValidityDays, http.StatusBadRequest, "validation", "Validity days must be at least 1"},
	{offerdomain.ErrValidityTooLong, http.StatusBadRequest, "validation", "Validity days exceed the allowed maximum"},
	{offerdomain.ErrInvalidMeetingTime, http.StatusBadRequest, "validation", "Invalid proposed meeting time"},
	{offerdomain.ErrInvalidDesiredDate, http.StatusBadRequest, "validation", "Invalid desired joining date"},
	{offerdomain.ErrAdvanceAlreadyPaid, http.StatusBadRequest, "validation", "Advance already paid"},
	{offerdomain.ErrAlreadyAccepted, http.StatusBadRequest, "validation", "Offer is already accepted"},
	{offerdomain.ErrNotAccepted, http.StatusBadRequest, "validation", "Offer is not accepted"},
	{offerdomain.ErrBookingNotVerified, http.StatusBadRequest, "validation", "Booking payment is not verified"},

	{paymentdomain.ErrInvalidTransactionID, http.StatusBadRequest, "validation", "Invalid transaction id"},
	{paymentdomain.ErrInvalidStatus, http.StatusBadRequest, "validation", "Invalid payment status"},
	{paymentdomain.ErrNoAdvanceRequested, http.StatusBadRequest, "validation", "No advance has been requested"},
	{paymentdomain.ErrOfferRejected, http.StatusBadRequest, "validation", "Offer has been rejected"},
	{paymentdomain.ErrAdvanceExpired, http.StatusBadRequest, "validation", "Advance request has expired"},
	{paymentdomain.ErrAlreadyPaid, http.StatusBadRequest, "validation", "Advance already paid"},
	{paymentdomain.ErrNotPaid, http.StatusBadRequest, "validation", "Payment is not paid"},
	{paymentdomain.ErrAmountMismatch, http.StatusBadRequest, "validation", "Payment amount does not match the requested advance"},

	{rentdomain.ErrInvalidRecordID, http.StatusBadRequest, "validation", "Invalid rent record id"},
	{rentdomain.ErrInvalidStatus, http.StatusBadRequest, "validation", "Invalid rent status"},
	{rentdomain.ErrInvalidStartMonth, http.StatusBadRequest, "validation", "Start month must be formatted YYYY-MM"},
	{rentdomain.ErrInvalidMonths, http.StatusBadRequest, "validation", "Months is out of range"},
	{rentdomain.ErrInvalidDueDay, http.StatusBadRequest, "validation", "Due day must be between 1 and 28"},
	{rentdomain.ErrOfferNotSettled, http.StatusBadRequest, "validation", "Offer must be accepted and move-in confirmed"},
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		if status == http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error("unhandled request error",
				zap.String("route", c.FullPath()),
				zap.Error(lastErr.Err),
			)
		}
		c.AbortWithStatusJSON(status, errorResponse{Message: message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, internalErrorMessage
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest, reqErr.Message
	}

	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, internalErrorMessage
}

func classifyErrorForLog(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return "validation"
	}
	if offerdomain.IsValidationError(err) || paymentdomain.IsValidationError(err) || rentdomain.IsValidationError(err) {
		return "validation"
	}
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.kind
		}
	}
	return "internal"
}

// bindError turns gin binding failures into a RequestError naming the first bad field.
func bindError(err error) error {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		fe := vErrs[0]
		switch fe.Tag() {
		case "required":
			return newRequestError("%s is required", fe.Field())
		case "oneof":
			return newRequestError("%s must be one of %s", fe.Field(), fe.Param())
		default:
			return newRequestError("%s is invalid", fe.Field())
		}
	}
	if errors.Is(err, io.EOF) {
		return newRequestError("Request body is required")
	}
	return newRequestError("Invalid request body")
}
