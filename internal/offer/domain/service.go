package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateOfferRequest struct {
	TenantID            snowflake.ID
	PropertyID          snowflake.ID
	OfferRent           decimal.Decimal
	JoiningDateEstimate string
	OfferAdvance        *decimal.Decimal
	OfferBookingAmount  *decimal.Decimal
	NeedsBikeParking    bool
	NeedsCarParking     bool
	TenantType          string
	AcceptsRules        bool
	MatchPercent        *float64
}

// RequestAdvanceRequest carries the owner's fields as sent. Amount and
// ValidityDays are parsed only once the caller is known to own the offer.
// MalformedBody marks a body that could not be decoded at all.
type RequestAdvanceRequest struct {
	OwnerID             snowflake.ID
	OfferID             snowflake.ID
	Amount              string
	ValidityDays        *string
	ProposedMeetingTime *string
	DesiredJoiningDate  *string
	MalformedBody       bool
}

type SetStatusRequest struct {
	OwnerID       snowflake.ID
	OfferID       snowflake.ID
	Status        string
	MalformedBody bool
}

type Service interface {
	Create(ctx context.Context, req CreateOfferRequest) (Offer, error)
	Get(ctx context.Context, callerID, offerID snowflake.ID) (Offer, error)
	ListReceived(ctx context.Context, ownerID snowflake.ID) ([]OfferView, error)
	ListSent(ctx context.Context, tenantID snowflake.ID) ([]OfferView, error)
	History(ctx context.Context, ownerID, propertyID, tenantID snowflake.ID) ([]HistoryEntry, error)

	RequestAdvance(ctx context.Context, req RequestAdvanceRequest) (Offer, error)
	SetStatus(ctx context.Context, req SetStatusRequest) (Offer, error)
	ConfirmMoveIn(ctx context.Context, ownerID, offerID snowflake.ID) (Offer, error)
}

// MutationLocker serializes lifecycle mutations of a single offer across processes.
type MutationLocker interface {
	LockOffer(ctx context.Context, offerID int64) (func(), error)
}

// PaymentState reports and adjusts the offer's linked booking transaction.
// tx is the caller's open transaction.
type PaymentState interface {
	IsTransactionPaid(ctx context.Context, tx *gorm.DB, transactionID snowflake.ID) (bool, error)
	// SyncPendingAmount sets a still-pending transaction's amount to the
	// latest requested advance. Paid or missing transactions are left alone.
	SyncPendingAmount(ctx context.Context, tx *gorm.DB, transactionID snowflake.ID, amount decimal.Decimal, at time.Time) error
}
