package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentora/internal/offer/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, offer *domain.Offer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO offers (
			id, property_id, owner_id, tenant_id, offer_rent, joining_date_estimate,
			offer_advance, offer_booking_amount, needs_bike_parking, needs_car_parking,
			tenant_type, accepts_rules, match_percent, status, action_type,
			booking_verified, tenant_move_in_confirmed, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		offer.ID,
		offer.PropertyID,
		offer.OwnerID,
		offer.TenantID,
		offer.OfferRent,
		offer.JoiningDateEstimate,
		offer.OfferAdvance,
		offer.OfferBookingAmount,
		offer.NeedsBikeParking,
		offer.NeedsCarParking,
		offer.TenantType,
		offer.AcceptsRules,
		offer.MatchPercent,
		offer.Status,
		offer.ActionType,
		offer.BookingVerified,
		offer.TenantMoveInConfirmed,
		offer.Version,
		offer.CreatedAt,
		offer.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Offer, error) {
	return r.find(db.WithContext(ctx), id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Offer, error) {
	return r.find(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *repo) find(stmt *gorm.DB, id snowflake.ID) (*domain.Offer, error) {
	var offer domain.Offer
	err := stmt.Model(&domain.Offer{}).Where("id = ?", id).Limit(1).Find(&offer).Error
	if err != nil {
		return nil, err
	}
	if offer.ID == 0 {
		return nil, nil
	}
	return &offer, nil
}

func (r *repo) ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]domain.Offer, error) {
	return r.list(db.WithContext(ctx).Where("owner_id = ?", ownerID))
}

func (r *repo) ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.Offer, error) {
	return r.list(db.WithContext(ctx).Where("tenant_id = ?", tenantID))
}

func (r *repo) ListHistory(ctx context.Context, db *gorm.DB, ownerID, propertyID, tenantID snowflake.ID) ([]domain.Offer, error) {
	return r.list(db.WithContext(ctx).Where(
		"owner_id = ? AND property_id = ? AND tenant_id = ?",
		ownerID,
		propertyID,
		tenantID,
	))
}

func (r *repo) list(stmt *gorm.DB) ([]domain.Offer, error) {
	var offers []domain.Offer
	err := stmt.Model(&domain.Offer{}).
		Order("created_at desc, id desc").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, offer *domain.Offer) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE offers SET
			status = ?, action_type = ?, requested_advance_amount = ?,
			requested_advance_validity_days = ?, proposed_meeting_time = ?,
			desired_joining_date = ?, advance_requested_at = ?,
			tenant_move_in_confirmed = ?, tenant_move_in_confirmed_at = ?,
			version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		offer.Status,
		offer.ActionType,
		offer.RequestedAdvanceAmount,
		offer.RequestedAdvanceValidityDays,
		offer.ProposedMeetingTime,
		offer.DesiredJoiningDate,
		offer.AdvanceRequestedAt,
		offer.TenantMoveInConfirmed,
		offer.TenantMoveInConfirmedAt,
		offer.UpdatedAt,
		offer.ID,
		offer.Version,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	offer.Version++
	return nil
}

func (r *repo) LinkPaymentTransaction(ctx context.Context, db *gorm.DB, offerID, transactionID snowflake.ID, at time.Time) error {
	return r.exec(ctx, db,
		`UPDATE offers SET payment_transaction_id = ?, version = version + 1, updated_at = ? WHERE id = ?`,
		transactionID, at, offerID,
	)
}

func (r *repo) SetBookingVerified(ctx context.Context, db *gorm.DB, offerID snowflake.ID, verified bool, at time.Time) error {
	return r.exec(ctx, db,
		`UPDATE offers SET booking_verified = ?, version = version + 1, updated_at = ? WHERE id = ?`,
		verified, at, offerID,
	)
}

func (r *repo) exec(ctx context.Context, db *gorm.DB, sql string, args ...interface{}) error {
	result := db.WithContext(ctx).Exec(sql, args...)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrOfferNotFound
	}
	return nil
}
