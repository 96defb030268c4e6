package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentora/internal/payment/domain"
	"github.com/smallbiznis/rentora/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingTxn(id, offerID snowflake.ID, at time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:        id,
		OfferID:   offerID,
		TenantID:  2,
		OwnerID:   1,
		Amount:    decimal.NewFromInt(5000),
		Currency:  "INR",
		Status:    domain.StatusPending,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestOnePendingTransactionPerOffer(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Transaction{}))

	ctx := context.Background()
	r := Provide()
	now := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

	first := pendingTxn(10, 77, now)
	require.NoError(t, r.Insert(ctx, conn, first))
	require.NotNil(t, first.PendingOfferID)
	assert.Equal(t, snowflake.ID(77), *first.PendingOfferID)

	err = r.Insert(ctx, conn, pendingTxn(11, 77, now))
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKeyErr(err), err.Error())

	// other offers are unaffected
	require.NoError(t, r.Insert(ctx, conn, pendingTxn(12, 78, now)))

	ok, err := r.MarkPaid(ctx, conn, first.ID, now.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	paid, err := r.FindByID(ctx, conn, first.ID)
	require.NoError(t, err)
	require.NotNil(t, paid)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	assert.Nil(t, paid.PendingOfferID)

	require.NoError(t, r.Insert(ctx, conn, pendingTxn(13, 77, now.Add(2*time.Minute))))
	pending, err := r.FindPendingByOffer(ctx, conn, 77)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, snowflake.ID(13), pending.ID)
}
