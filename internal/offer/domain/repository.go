package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, offer *Offer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Offer, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Offer, error)
	ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]Offer, error)
	ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]Offer, error)
	ListHistory(ctx context.Context, db *gorm.DB, ownerID, propertyID, tenantID snowflake.ID) ([]Offer, error)

	// Update writes every mutable field guarded by offer.Version and bumps it.
	// A stale version yields ErrConflict.
	Update(ctx context.Context, db *gorm.DB, offer *Offer) error

	// LinkPaymentTransaction and SetBookingVerified are only called by the
	// payment ledger from inside its own transaction.
	LinkPaymentTransaction(ctx context.Context, db *gorm.DB, offerID, transactionID snowflake.ID, at time.Time) error
	SetBookingVerified(ctx context.Context, db *gorm.DB, offerID snowflake.ID, verified bool, at time.Time) error
}
