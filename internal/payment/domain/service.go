package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
	"gorm.io/gorm"
)

type Service interface {
	CreateTransaction(ctx context.Context, tenantID, offerID snowflake.ID) (Transaction, error)
	MarkPaid(ctx context.Context, tenantID, transactionID snowflake.ID) (Transaction, error)
	Verify(ctx context.Context, ownerID, transactionID snowflake.ID) (Verification, error)
	ListForOffer(ctx context.Context, callerID, offerID snowflake.ID) ([]Transaction, error)
	Reconcile(ctx context.Context, ownerID, offerID snowflake.ID) (offerdomain.Offer, error)

	IsTransactionPaid(ctx context.Context, tx *gorm.DB, transactionID snowflake.ID) (bool, error)
	SyncPendingAmount(ctx context.Context, tx *gorm.DB, transactionID snowflake.ID, amount decimal.Decimal, at time.Time) error
}
