package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentora/internal/rent/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// InsertIfAbsent relies on the (offer_id, rent_month) unique index; gorm
// renders the conflict clause for each dialect.
func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, record *domain.RentMonthRecord) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "offer_id"}, {Name: "rent_month"}},
			DoNothing: true,
		}).
		Create(record)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.RentMonthRecord, error) {
	var record domain.RentMonthRecord
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Model(&domain.RentMonthRecord{}).
		Where("id = ?", id).
		Limit(1).
		Find(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) ListByOffer(ctx context.Context, db *gorm.DB, offerID snowflake.ID) ([]domain.RentMonthRecord, error) {
	var items []domain.RentMonthRecord
	err := db.WithContext(ctx).
		Model(&domain.RentMonthRecord{}).
		Where("offer_id = ?", offerID).
		Order("rent_month asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, paymentTransactionID *snowflake.ID, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE rent_month_records
		 SET status = ?, paid_at = ?, payment_transaction_id = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.StatusPaid,
		at,
		paymentTransactionID,
		at,
		id,
		domain.StatusPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
