package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

func ParseStatus(v string) (Status, error) {
	switch status := Status(strings.ToLower(strings.TrimSpace(v))); status {
	case StatusPending, StatusPaid:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Transaction is one booking-advance payment attempt against an offer.
type Transaction struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"transactionId"`
	OfferID         snowflake.ID    `gorm:"not null;index" json:"offerId"`
	TenantID        snowflake.ID    `gorm:"not null;index" json:"tenantId"`
	OwnerID         snowflake.ID    `gorm:"not null;index" json:"ownerId"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency        string          `gorm:"type:varchar(3);not null" json:"currency"`
	Status          Status          `gorm:"not null;default:pending" json:"status"`
	// PendingOfferID mirrors OfferID while the transaction is pending and is
	// NULL afterwards, so its unique index allows one open payment per offer.
	PendingOfferID  *snowflake.ID   `gorm:"uniqueIndex:ux_payment_transactions_pending_offer" json:"-"`
	PaidAt          *time.Time      `json:"paidAt"`
	OwnerVerified   bool            `gorm:"not null;default:false" json:"ownerVerified"`
	OwnerVerifiedAt *time.Time      `json:"ownerVerifiedAt"`
	CreatedAt       time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updatedAt"`
}

func (Transaction) TableName() string { return "payment_transactions" }

// Verification is the transaction together with the offer it unlocked.
type Verification struct {
	Transaction Transaction       `json:"transaction"`
	Offer       offerdomain.Offer `json:"offer"`
}

const (
	EventCreated    = "created"
	EventMarkedPaid = "marked_paid"
	EventVerified   = "verified"
	EventReconciled = "reconciled"
)
