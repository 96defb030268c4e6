package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentora/internal/rent/domain"
	"github.com/smallbiznis/rentora/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertIfAbsentSkipsExistingMonth(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.RentMonthRecord{}))

	ctx := context.Background()
	r := Provide()
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	record := func(id int64, month string) *domain.RentMonthRecord {
		return &domain.RentMonthRecord{
			ID:         snowflake.ID(id),
			OfferID:    50,
			PropertyID: 60,
			TenantID:   2,
			OwnerID:    1,
			RentMonth:  month,
			DueDate:    now,
			Amount:     decimal.NewFromInt(15000),
			Currency:   "INR",
			Status:     domain.StatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	created, err := r.InsertIfAbsent(ctx, conn, record(1, "2026-04"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = r.InsertIfAbsent(ctx, conn, record(2, "2026-04"))
	require.NoError(t, err)
	assert.False(t, created)

	created, err = r.InsertIfAbsent(ctx, conn, record(3, "2026-05"))
	require.NoError(t, err)
	assert.True(t, created)

	var count int64
	require.NoError(t, conn.Model(&domain.RentMonthRecord{}).Where("offer_id = ?", 50).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
