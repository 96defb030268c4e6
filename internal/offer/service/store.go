package service

import (
	"context"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/rentora/internal/audit/domain"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
	"gorm.io/gorm"
)

const ActionCreated = "offer.created"

func (s *Service) Create(ctx context.Context, req offerdomain.CreateOfferRequest) (offerdomain.Offer, error) {
	if req.TenantID == 0 {
		return offerdomain.Offer{}, offerdomain.ErrInvalidTenantID
	}
	if req.PropertyID == 0 {
		return offerdomain.Offer{}, offerdomain.ErrInvalidPropertyID
	}
	if !req.OfferRent.IsPositive() || !offerdomain.FitsMoneyColumn(req.OfferRent) {
		return offerdomain.Offer{}, offerdomain.ErrInvalidOfferRent
	}
	joiningDate := strings.TrimSpace(req.JoiningDateEstimate)
	if joiningDate == "" {
		return offerdomain.Offer{}, offerdomain.ErrInvalidJoiningDate
	}
	advance, err := optionalAmount(req.OfferAdvance)
	if err != nil {
		return offerdomain.Offer{}, err
	}
	booking, err := optionalAmount(req.OfferBookingAmount)
	if err != nil {
		return offerdomain.Offer{}, err
	}

	property, err := s.directory.GetProperty(ctx, req.PropertyID)
	if err != nil {
		return offerdomain.Offer{}, err
	}
	if property.OwnerID == req.TenantID {
		return offerdomain.Offer{}, offerdomain.ErrOwnProperty
	}

	now := s.now()
	offer := offerdomain.Offer{
		ID:                  s.genID.Generate(),
		PropertyID:          property.ID,
		OwnerID:             property.OwnerID,
		TenantID:            req.TenantID,
		OfferRent:           req.OfferRent,
		JoiningDateEstimate: joiningDate,
		OfferAdvance:        advance,
		OfferBookingAmount:  booking,
		NeedsBikeParking:    req.NeedsBikeParking,
		NeedsCarParking:     req.NeedsCarParking,
		TenantType:          strings.TrimSpace(req.TenantType),
		AcceptsRules:        req.AcceptsRules,
		MatchPercent:        normalizeMatchPercent(req.MatchPercent),
		Status:              offerdomain.StatusPending,
		ActionType:          offerdomain.ActionNone,
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &offer); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.Entry{
			ActorID:    req.TenantID,
			Action:     ActionCreated,
			TargetType: auditdomain.TargetTypeOffer,
			TargetID:   offer.ID,
			Metadata: map[string]any{
				"property_id": offer.PropertyID.String(),
				"offer_rent":  offer.OfferRent.String(),
			},
		})
	})
	if err != nil {
		return offerdomain.Offer{}, err
	}

	s.metrics.RecordOfferTransition(ctx, ActionCreated, string(offer.Status))
	return offer, nil
}

func (s *Service) Get(ctx context.Context, callerID, offerID snowflake.ID) (offerdomain.Offer, error) {
	if offerID == 0 {
		return offerdomain.Offer{}, offerdomain.ErrInvalidID
	}
	offer, err := s.repo.FindByID(ctx, s.db, offerID)
	if err != nil {
		return offerdomain.Offer{}, err
	}
	if offer == nil {
		return offerdomain.Offer{}, offerdomain.ErrOfferNotFound
	}
	if offer.OwnerID != callerID && offer.TenantID != callerID {
		return offerdomain.Offer{}, offerdomain.ErrForbidden
	}
	return *offer, nil
}

func (s *Service) ListReceived(ctx context.Context, ownerID snowflake.ID) ([]offerdomain.OfferView, error) {
	offers, err := s.repo.ListByOwner(ctx, s.db, ownerID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, offers, func(o offerdomain.Offer) snowflake.ID { return o.TenantID }, func(v *offerdomain.OfferView, u *offerdomain.UserSummary) {
		v.Tenant = u
	})
}

func (s *Service) ListSent(ctx context.Context, tenantID snowflake.ID) ([]offerdomain.OfferView, error) {
	offers, err := s.repo.ListByTenant(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, offers, func(o offerdomain.Offer) snowflake.ID { return o.OwnerID }, func(v *offerdomain.OfferView, u *offerdomain.UserSummary) {
		v.Owner = u
	})
}

func (s *Service) History(ctx context.Context, ownerID, propertyID, tenantID snowflake.ID) ([]offerdomain.HistoryEntry, error) {
	if propertyID == 0 {
		return nil, offerdomain.ErrInvalidPropertyID
	}
	if tenantID == 0 {
		return nil, offerdomain.ErrInvalidTenantID
	}
	offers, err := s.repo.ListHistory(ctx, s.db, ownerID, propertyID, tenantID)
	if err != nil {
		return nil, err
	}
	entries := make([]offerdomain.HistoryEntry, 0, len(offers))
	for _, offer := range offers {
		entries = append(entries, offerdomain.NewHistoryEntry(offer))
	}
	return entries, nil
}

// join attaches the property summary and the counterparty picked by userOf.
// Offers whose property or user disappeared from the directory are still returned.
func (s *Service) join(
	ctx context.Context,
	offers []offerdomain.Offer,
	userOf func(offerdomain.Offer) snowflake.ID,
	attach func(*offerdomain.OfferView, *offerdomain.UserSummary),
) ([]offerdomain.OfferView, error) {
	views := make([]offerdomain.OfferView, 0, len(offers))
	if len(offers) == 0 {
		return views, nil
	}

	propertyIDs := make([]snowflake.ID, 0, len(offers))
	userIDs := make([]snowflake.ID, 0, len(offers))
	for _, offer := range offers {
		propertyIDs = append(propertyIDs, offer.PropertyID)
		userIDs = append(userIDs, userOf(offer))
	}

	properties, err := s.directory.GetProperties(ctx, propertyIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.directory.GetUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for _, offer := range offers {
		view := offerdomain.OfferView{Offer: offer}
		if property, ok := properties[offer.PropertyID]; ok {
			view.Property = propertySummary(property)
		}
		if user, ok := users[userOf(offer)]; ok {
			attach(&view, userSummary(user))
		}
		views = append(views, view)
	}
	return views, nil
}

func propertySummary(p directorydomain.Property) *offerdomain.PropertySummary {
	return &offerdomain.PropertySummary{
		ID:       p.ID,
		Title:    p.Title,
		Location: p.Location,
		Rent:     p.Rent,
	}
}

func userSummary(u directorydomain.UserProfile) *offerdomain.UserSummary {
	return &offerdomain.UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		AvatarURL: u.AvatarURL,
	}
}

func optionalAmount(v *decimal.Decimal) (decimal.NullDecimal, error) {
	if v == nil {
		return decimal.NullDecimal{}, nil
	}
	if v.IsNegative() || !offerdomain.FitsMoneyColumn(*v) {
		return decimal.NullDecimal{}, offerdomain.ErrInvalidAmount
	}
	return decimal.NewNullDecimal(*v), nil
}

func normalizeMatchPercent(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return math.Min(100, math.Max(0, *v))
}
