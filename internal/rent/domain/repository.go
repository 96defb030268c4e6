package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertIfAbsent skips months the offer already has and reports whether a row was written.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, record *RentMonthRecord) (bool, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RentMonthRecord, error)
	ListByOffer(ctx context.Context, db *gorm.DB, offerID snowflake.ID) ([]RentMonthRecord, error)
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, paymentTransactionID *snowflake.ID, at time.Time) (bool, error)
}
