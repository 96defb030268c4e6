package domain

import "errors"

var (
	ErrInvalidRecordID   = errors.New("invalid_rent_record_id")
	ErrRecordNotFound    = errors.New("rent_record_not_found")
	ErrForbidden         = errors.New("rent_record_forbidden")
	ErrInvalidStatus     = errors.New("invalid_rent_status")
	ErrInvalidStartMonth = errors.New("invalid_start_month")
	ErrInvalidMonths     = errors.New("invalid_months")
	ErrInvalidDueDay     = errors.New("invalid_due_day")
	ErrOfferNotSettled   = errors.New("offer_not_settled")
)

func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRecordID),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidStartMonth),
		errors.Is(err, ErrInvalidMonths),
		errors.Is(err, ErrInvalidDueDay),
		errors.Is(err, ErrOfferNotSettled):
		return true
	default:
		return false
	}
}
