package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
	"gorm.io/gorm"
)

const (
	ActionAdvanceRequested = "offer.advance_requested"
	ActionStatusChanged    = "offer.status_changed"
	ActionMoveInConfirmed  = "offer.move_in_confirmed"
)

// advanceRequest is a validated RequestAdvanceRequest.
type advanceRequest struct {
	amount       decimal.Decimal
	validityDays *int
	meetingTime  *time.Time
	joiningDate  *time.Time
}

func (s *Service) RequestAdvance(ctx context.Context, req offerdomain.RequestAdvanceRequest) (offerdomain.Offer, error) {
	return s.mutate(ctx, req.OwnerID, req.OfferID, ActionAdvanceRequested, func(tx *gorm.DB, offer *offerdomain.Offer, now time.Time) (map[string]any, bool, error) {
		parsed, err := s.validateAdvance(req)
		if err != nil {
			return nil, false, err
		}
		if err := s.ensureAdvanceOpen(ctx, tx, offer); err != nil {
			return nil, false, err
		}

		offer.RequestedAdvanceAmount = decimal.NewNullDecimal(parsed.amount)
		offer.RequestedAdvanceValidityDays = parsed.validityDays
		offer.ProposedMeetingTime = parsed.meetingTime
		offer.DesiredJoiningDate = parsed.joiningDate
		offer.ActionType = offerdomain.ActionAdvanceRequested
		offer.AdvanceRequestedAt = &now

		if offer.PaymentTransactionID != nil && s.payments != nil {
			if err := s.payments.SyncPendingAmount(ctx, tx, *offer.PaymentTransactionID, parsed.amount, now); err != nil {
				return nil, false, err
			}
		}

		metadata := map[string]any{"amount": parsed.amount.String()}
		if parsed.validityDays != nil {
			metadata["validity_days"] = *parsed.validityDays
		}
		return metadata, true, nil
	})
}

func (s *Service) validateAdvance(req offerdomain.RequestAdvanceRequest) (advanceRequest, error) {
	if req.MalformedBody {
		return advanceRequest{}, offerdomain.ErrMalformedBody
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() || !offerdomain.FitsMoneyColumn(amount) {
		return advanceRequest{}, offerdomain.ErrInvalidAdvanceAmount
	}
	parsed := advanceRequest{amount: amount}

	if req.ValidityDays != nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(*req.ValidityDays), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return advanceRequest{}, offerdomain.ErrInvalidValidityDays
		}
		floored := math.Floor(v)
		if floored < 1 {
			return advanceRequest{}, offerdomain.ErrInvalidValidityDays
		}
		if floored > float64(s.policy.Get().MaxAdvanceValidityDays) {
			return advanceRequest{}, offerdomain.ErrValidityTooLong
		}
		days := int(floored)
		parsed.validityDays = &days
	}

	if req.ProposedMeetingTime != nil {
		t, err := offerdomain.ParseDate(*req.ProposedMeetingTime)
		if err != nil {
			return advanceRequest{}, offerdomain.ErrInvalidMeetingTime
		}
		parsed.meetingTime = &t
	}
	if req.DesiredJoiningDate != nil {
		t, err := offerdomain.ParseDate(*req.DesiredJoiningDate)
		if err != nil {
			return advanceRequest{}, offerdomain.ErrInvalidDesiredDate
		}
		parsed.joiningDate = &t
	}
	return parsed, nil
}

// ensureAdvanceOpen refuses a new request once the booking has been paid.
func (s *Service) ensureAdvanceOpen(ctx context.Context, tx *gorm.DB, offer *offerdomain.Offer) error {
	if offer.BookingVerified {
		return offerdomain.ErrAdvanceAlreadyPaid
	}
	if offer.PaymentTransactionID == nil || s.payments == nil {
		return nil
	}
	paid, err := s.payments.IsTransactionPaid(ctx, tx, *offer.PaymentTransactionID)
	if err != nil {
		return err
	}
	if paid {
		return offerdomain.ErrAdvanceAlreadyPaid
	}
	return nil
}

func (s *Service) SetStatus(ctx context.Context, req offerdomain.SetStatusRequest) (offerdomain.Offer, error) {
	return s.mutate(ctx, req.OwnerID, req.OfferID, ActionStatusChanged, func(_ *gorm.DB, offer *offerdomain.Offer, _ time.Time) (map[string]any, bool, error) {
		if req.MalformedBody {
			return nil, false, offerdomain.ErrMalformedBody
		}
		if strings.TrimSpace(req.Status) == "" {
			return nil, false, offerdomain.ErrStatusRequired
		}
		next, err := offerdomain.ParseStatus(req.Status)
		if err != nil {
			return nil, false, err
		}
		if next == offer.Status {
			return nil, false, nil
		}
		if offer.Status == offerdomain.StatusAccepted && s.policy.Get().AcceptedIsTerminal {
			return nil, false, offerdomain.ErrAlreadyAccepted
		}

		previous := offer.Status
		offer.Status = next
		return map[string]any{
			"from": string(previous),
			"to":   string(next),
		}, true, nil
	})
}

func (s *Service) ConfirmMoveIn(ctx context.Context, ownerID, offerID snowflake.ID) (offerdomain.Offer, error) {
	return s.mutate(ctx, ownerID, offerID, ActionMoveInConfirmed, func(_ *gorm.DB, offer *offerdomain.Offer, now time.Time) (map[string]any, bool, error) {
		if offer.Status != offerdomain.StatusAccepted {
			return nil, false, offerdomain.ErrNotAccepted
		}
		if !offer.BookingVerified {
			return nil, false, offerdomain.ErrBookingNotVerified
		}
		if offer.TenantMoveInConfirmed {
			return nil, false, nil
		}

		offer.TenantMoveInConfirmed = true
		offer.TenantMoveInConfirmedAt = &now
		var txID string
		if offer.PaymentTransactionID != nil {
			txID = offer.PaymentTransactionID.String()
		}
		return map[string]any{"payment_transaction_id": txID}, true, nil
	})
}
