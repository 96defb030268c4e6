package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
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

const (
	MonthLayout    = "2006-01"
	DefaultDueDay  = 5
	MaxDueDay      = 28
	EventGenerated = "generated"
	EventPaid      = "paid"
)

// RentMonthRecord is one month of rent owed under a settled offer.
type RentMonthRecord struct {
	ID                   snowflake.ID    `gorm:"primaryKey" json:"recordId"`
	OfferID              snowflake.ID    `gorm:"not null;uniqueIndex:ux_rent_month_records_offer_month,priority:1" json:"offerId"`
	PropertyID           snowflake.ID    `gorm:"not null;index" json:"propertyId"`
	TenantID             snowflake.ID    `gorm:"not null;index" json:"tenantId"`
	OwnerID              snowflake.ID    `gorm:"not null;index" json:"ownerId"`
	RentMonth            string          `gorm:"type:varchar(7);not null;uniqueIndex:ux_rent_month_records_offer_month,priority:2" json:"rentMonth"`
	DueDate              time.Time       `gorm:"not null" json:"dueDate"`
	Amount               decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency             string          `gorm:"type:varchar(3);not null" json:"currency"`
	Status               Status          `gorm:"not null;default:pending" json:"status"`
	PaidAt               *time.Time      `json:"paidAt"`
	PaymentTransactionID *snowflake.ID   `json:"paymentTransactionId"`
	CreatedAt            time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt            time.Time       `gorm:"not null" json:"updatedAt"`
}

func (RentMonthRecord) TableName() string { return "rent_month_records" }
