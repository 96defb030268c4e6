package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusOnHold   Status = "on_hold"
)

// ParseStatus trims and lower-cases v before matching it against the closed set.
func ParseStatus(v string) (Status, error) {
	switch status := Status(strings.ToLower(strings.TrimSpace(v))); status {
	case StatusPending, StatusAccepted, StatusRejected, StatusOnHold:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

type ActionType string

const (
	ActionNone             ActionType = ""
	ActionAdvanceRequested ActionType = "advance_requested"
)

func ParseActionType(v string) (ActionType, error) {
	switch action := ActionType(strings.ToLower(strings.TrimSpace(v))); action {
	case ActionNone, ActionAdvanceRequested:
		return action, nil
	default:
		return "", ErrInvalidActionType
	}
}

type Offer struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"offerId"`
	PropertyID snowflake.ID `gorm:"not null;index" json:"propertyId"`
	OwnerID    snowflake.ID `gorm:"not null;index" json:"ownerId"`
	TenantID   snowflake.ID `gorm:"not null;index" json:"tenantId"`

	OfferRent           decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"offerRent"`
	JoiningDateEstimate string              `gorm:"not null" json:"joiningDateEstimate"`
	OfferAdvance        decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"offerAdvance"`
	OfferBookingAmount  decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"offerBookingAmount"`
	NeedsBikeParking    bool                `gorm:"not null;default:false" json:"needsBikeParking"`
	NeedsCarParking     bool                `gorm:"not null;default:false" json:"needsCarParking"`
	TenantType          string              `json:"tenantType,omitempty"`
	AcceptsRules        bool                `gorm:"not null;default:false" json:"acceptsRules"`
	MatchPercent        float64             `gorm:"not null;default:0" json:"matchPercent"`

	Status                       Status              `gorm:"not null;default:pending" json:"status"`
	ActionType                   ActionType          `gorm:"not null;default:''" json:"actionType"`
	RequestedAdvanceAmount       decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"requestedAdvanceAmount"`
	RequestedAdvanceValidityDays *int                `json:"requestedAdvanceValidityDays"`
	ProposedMeetingTime          *time.Time          `json:"proposedMeetingTime"`
	DesiredJoiningDate           *time.Time          `json:"desiredJoiningDate"`
	AdvanceRequestedAt           *time.Time          `json:"advanceRequestedAt"`
	PaymentTransactionID         *snowflake.ID       `json:"paymentTransactionId"`

	BookingVerified         bool       `gorm:"not null;default:false" json:"bookingVerified"`
	TenantMoveInConfirmed   bool       `gorm:"not null;default:false" json:"tenantMoveInConfirmed"`
	TenantMoveInConfirmedAt *time.Time `json:"tenantMoveInConfirmedAt"`

	Version   int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Offer) TableName() string { return "offers" }

// AdvanceExpiresAt reports when the outstanding advance request lapses.
// ok is false when no request is outstanding or it carries no validity window.
func (o Offer) AdvanceExpiresAt() (time.Time, bool) {
	if o.ActionType != ActionAdvanceRequested || o.AdvanceRequestedAt == nil || o.RequestedAdvanceValidityDays == nil {
		return time.Time{}, false
	}
	return o.AdvanceRequestedAt.AddDate(0, 0, *o.RequestedAdvanceValidityDays), true
}

type PropertySummary struct {
	ID       snowflake.ID    `json:"id"`
	Title    string          `json:"title"`
	Location string          `json:"location"`
	Rent     decimal.Decimal `json:"rent"`
}

type UserSummary struct {
	ID        snowflake.ID `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	AvatarURL string       `json:"avatarUrl,omitempty"`
}

// OfferView is an offer joined with directory summaries for listing.
type OfferView struct {
	Offer
	Property *PropertySummary `json:"property,omitempty"`
	Tenant   *UserSummary     `json:"tenant,omitempty"`
	Owner    *UserSummary     `json:"owner,omitempty"`
}

// HistoryEntry is the negotiation-only projection returned by History.
type HistoryEntry struct {
	ID                           snowflake.ID        `json:"offerId"`
	Status                       Status              `json:"status"`
	ActionType                   ActionType          `json:"actionType"`
	OfferRent                    decimal.Decimal     `json:"offerRent"`
	JoiningDateEstimate          string              `json:"joiningDateEstimate"`
	RequestedAdvanceAmount       decimal.NullDecimal `json:"requestedAdvanceAmount"`
	RequestedAdvanceValidityDays *int                `json:"requestedAdvanceValidityDays"`
	ProposedMeetingTime          *time.Time          `json:"proposedMeetingTime"`
	DesiredJoiningDate           *time.Time          `json:"desiredJoiningDate"`
	BookingVerified              bool                `json:"bookingVerified"`
	TenantMoveInConfirmed        bool                `json:"tenantMoveInConfirmed"`
	CreatedAt                    time.Time           `json:"createdAt"`
	UpdatedAt                    time.Time           `json:"updatedAt"`
}

func NewHistoryEntry(o Offer) HistoryEntry {
	return HistoryEntry{
		ID:                           o.ID,
		Status:                       o.Status,
		ActionType:                   o.ActionType,
		OfferRent:                    o.OfferRent,
		JoiningDateEstimate:          o.JoiningDateEstimate,
		RequestedAdvanceAmount:       o.RequestedAdvanceAmount,
		RequestedAdvanceValidityDays: o.RequestedAdvanceValidityDays,
		ProposedMeetingTime:          o.ProposedMeetingTime,
		DesiredJoiningDate:           o.DesiredJoiningDate,
		BookingVerified:              o.BookingVerified,
		TenantMoveInConfirmed:        o.TenantMoveInConfirmed,
		CreatedAt:                    o.CreatedAt,
		UpdatedAt:                    o.UpdatedAt,
	}
}
