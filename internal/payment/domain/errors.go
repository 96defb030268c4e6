package domain

import "errors"

var (
	ErrInvalidTransactionID = errors.New("invalid_transaction_id")
	ErrTransactionNotFound  = errors.New("transaction_not_found")
	ErrForbidden            = errors.New("payment_forbidden")
	ErrInvalidStatus        = errors.New("invalid_payment_status")
	ErrNoAdvanceRequested   = errors.New("no_advance_requested")
	ErrOfferRejected        = errors.New("offer_rejected")
	ErrAdvanceExpired       = errors.New("advance_request_expired")
	ErrAlreadyPaid          = errors.New("payment_already_paid")
	ErrNotPaid              = errors.New("payment_not_paid")
	ErrAmountMismatch       = errors.New("payment_amount_mismatch")
)

func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidTransactionID),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrNoAdvanceRequested),
		errors.Is(err, ErrOfferRejected),
		errors.Is(err, ErrAdvanceExpired),
		errors.Is(err, ErrAlreadyPaid),
		errors.Is(err, ErrNotPaid),
		errors.Is(err, ErrAmountMismatch):
		return true
	default:
		return false
	}
}
