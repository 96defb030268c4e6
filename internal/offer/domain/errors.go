package domain

import "errors"

var (
	ErrInvalidID          = errors.New("invalid_offer_id")
	ErrOfferNotFound      = errors.New("offer_not_found")
	ErrForbidden          = errors.New("offer_forbidden")
	ErrConflict           = errors.New("offer_conflict")
	ErrInvalidPropertyID  = errors.New("invalid_property_id")
	ErrInvalidTenantID    = errors.New("invalid_tenant_id")
	ErrInvalidOfferRent   = errors.New("invalid_offer_rent")
	ErrInvalidJoiningDate = errors.New("invalid_joining_date_estimate")
	ErrInvalidAmount      = errors.New("invalid_offer_amount")
	ErrOwnProperty        = errors.New("own_property_offer")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrStatusRequired     = errors.New("status_required")
	ErrMalformedBody      = errors.New("malformed_request_body")
	ErrInvalidActionType  = errors.New("invalid_action_type")

	ErrInvalidAdvanceAmount = errors.New("invalid_advance_amount")
	ErrInvalidValidityDays  = errors.New("invalid_validity_days")
	ErrValidityTooLong      = errors.New("validity_days_too_long")
	ErrInvalidMeetingTime   = errors.New("invalid_meeting_time")
	ErrInvalidDesiredDate   = errors.New("invalid_desired_joining_date")
	ErrAdvanceAlreadyPaid   = errors.New("advance_already_paid")

	ErrAlreadyAccepted    = errors.New("offer_already_accepted")
	ErrNotAccepted        = errors.New("offer_not_accepted")
	ErrBookingNotVerified = errors.New("booking_not_verified")
)

func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidPropertyID),
		errors.Is(err, ErrInvalidTenantID),
		errors.Is(err, ErrInvalidOfferRent),
		errors.Is(err, ErrInvalidJoiningDate),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrOwnProperty),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrStatusRequired),
		errors.Is(err, ErrMalformedBody),
		errors.Is(err, ErrInvalidActionType),
		errors.Is(err, ErrInvalidAdvanceAmount),
		errors.Is(err, ErrInvalidValidityDays),
		errors.Is(err, ErrValidityTooLong),
		errors.Is(err, ErrInvalidMeetingTime),
		errors.Is(err, ErrInvalidDesiredDate),
		errors.Is(err, ErrAdvanceAlreadyPaid),
		errors.Is(err, ErrAlreadyAccepted),
		errors.Is(err, ErrNotAccepted),
		errors.Is(err, ErrBookingNotVerified):
		return true
	default:
		return false
	}
}
