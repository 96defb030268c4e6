package db

import (
	"context"

	"gorm.io/gorm"
)

const maxTxAttempts = 3

// Transaction runs fn in a transaction and reruns it when the database
// aborted it for a serialization failure or deadlock. fn must be safe to
// run more than once; state it captures is reset by the caller per attempt.
func Transaction(ctx context.Context, conn *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = conn.WithContext(ctx).Transaction(fn)
		if !IsRetryableTxErr(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
