package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentora/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, txn *domain.Transaction) error {
	txn.PendingOfferID = nil
	if txn.Status == domain.StatusPending {
		offerID := txn.OfferID
		txn.PendingOfferID = &offerID
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_transactions (
			id, offer_id, tenant_id, owner_id, amount, currency, status,
			pending_offer_id, owner_verified, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.OfferID,
		txn.TenantID,
		txn.OwnerID,
		txn.Amount,
		txn.Currency,
		txn.Status,
		txn.PendingOfferID,
		txn.OwnerVerified,
		txn.CreatedAt,
		txn.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Transaction, error) {
	return r.first(db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Transaction, error) {
	return r.first(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *repo) FindPendingByOffer(ctx context.Context, db *gorm.DB, offerID snowflake.ID) (*domain.Transaction, error) {
	return r.first(db.WithContext(ctx).
		Where("offer_id = ? AND status = ?", offerID, domain.StatusPending).
		Order("created_at desc, id desc"))
}

func (r *repo) first(stmt *gorm.DB) (*domain.Transaction, error) {
	var txn domain.Transaction
	if err := stmt.Model(&domain.Transaction{}).Limit(1).Find(&txn).Error; err != nil {
		return nil, err
	}
	if txn.ID == 0 {
		return nil, nil
	}
	return &txn, nil
}

func (r *repo) ListByOffer(ctx context.Context, db *gorm.DB, offerID snowflake.ID) ([]domain.Transaction, error) {
	var items []domain.Transaction
	err := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("offer_id = ?", offerID).
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdatePendingAmount(ctx context.Context, db *gorm.DB, id snowflake.ID, amount decimal.Decimal, at time.Time) (bool, error) {
	return r.transition(db.WithContext(ctx).Exec(
		`UPDATE payment_transactions
		 SET amount = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		amount, at, id, domain.StatusPending,
	))
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error) {
	return r.transition(db.WithContext(ctx).Exec(
		`UPDATE payment_transactions
		 SET status = ?, pending_offer_id = NULL, paid_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.StatusPaid, at, at, id, domain.StatusPending,
	))
}

func (r *repo) MarkVerified(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error) {
	return r.transition(db.WithContext(ctx).Exec(
		`UPDATE payment_transactions
		 SET owner_verified = ?, owner_verified_at = ?, updated_at = ?
		 WHERE id = ? AND status = ? AND owner_verified = ?`,
		true, at, at, id, domain.StatusPaid, false,
	))
}

func (r *repo) transition(res *gorm.DB) (bool, error) {
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
