package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTransactionRetriesSerializationFailures(t *testing.T) {
	conn, err := NewTest()
	require.NoError(t, err)

	attempts := 0
	err = Transaction(context.Background(), conn, func(tx *gorm.DB) error {
		attempts++
		if attempts < 2 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestTransactionGivesUpAfterMaxAttempts(t *testing.T) {
	conn, err := NewTest()
	require.NoError(t, err)

	attempts := 0
	err = Transaction(context.Background(), conn, func(tx *gorm.DB) error {
		attempts++
		return &pgconn.PgError{Code: "40001"}
	})
	assert.True(t, IsRetryableTxErr(err))
	assert.Equal(t, maxTxAttempts, attempts)
}

func TestTransactionDoesNotRetryOtherErrors(t *testing.T) {
	conn, err := NewTest()
	require.NoError(t, err)

	boom := errors.New("boom")
	attempts := 0
	err = Transaction(context.Background(), conn, func(tx *gorm.DB) error {
		attempts++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}
