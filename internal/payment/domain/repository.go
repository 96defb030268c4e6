package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, txn *Transaction) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Transaction, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Transaction, error)
	FindPendingByOffer(ctx context.Context, db *gorm.DB, offerID snowflake.ID) (*Transaction, error)
	ListByOffer(ctx context.Context, db *gorm.DB, offerID snowflake.ID) ([]Transaction, error)

	// UpdatePendingAmount, MarkPaid and MarkVerified report false when the row
	// was not in the state the transition requires.
	UpdatePendingAmount(ctx context.Context, db *gorm.DB, id snowflake.ID, amount decimal.Decimal, at time.Time) (bool, error)
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error)
	MarkVerified(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error)
}
