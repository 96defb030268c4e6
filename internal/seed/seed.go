package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	"gorm.io/gorm"
)

const (
	defaultOwnerEmail  = "owner@rentora.local"
	defaultOwnerName   = "Demo Owner"
	defaultTenantEmail = "tenant@rentora.local"
	defaultTenantName  = "Demo Tenant"

	defaultPropertyTitle    = "Demo 2BHK Apartment"
	defaultPropertyLocation = "Bengaluru"
)

var defaultPropertyRent = decimal.NewFromInt(15000)

// Directory holds the ids of the seeded demo accounts.
type Directory struct {
	OwnerID    snowflake.ID
	TenantID   snowflake.ID
	PropertyID snowflake.ID
}

// EnsureDemoDirectory seeds one owner, one tenant and a property owned by the
// owner so a local deployment can be exercised end to end. Re-running it
// returns the existing rows.
func EnsureDemoDirectory(ctx context.Context, db *gorm.DB, node *snowflake.Node) (Directory, error) {
	if db == nil {
		return Directory{}, errors.New("seed database handle is required")
	}
	if node == nil {
		return Directory{}, errors.New("seed id generator is required")
	}

	var out Directory
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := ensureUserTx(ctx, tx, node, defaultOwnerEmail, defaultOwnerName)
		if err != nil {
			return err
		}
		tenant, err := ensureUserTx(ctx, tx, node, defaultTenantEmail, defaultTenantName)
		if err != nil {
			return err
		}
		property, err := ensurePropertyTx(ctx, tx, node, owner.ID)
		if err != nil {
			return err
		}

		out = Directory{OwnerID: owner.ID, TenantID: tenant.ID, PropertyID: property.ID}
		return nil
	})
	return out, err
}

func ensureUserTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, email, name string) (directorydomain.UserProfile, error) {
	var user directorydomain.UserProfile
	email = strings.ToLower(strings.TrimSpace(email))
	err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return user, err
	}

	user = directorydomain.UserProfile{
		ID:    node.Generate(),
		Name:  name,
		Email: email,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return user, err
	}
	return user, nil
}

func ensurePropertyTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, ownerID snowflake.ID) (directorydomain.Property, error) {
	var property directorydomain.Property
	err := tx.WithContext(ctx).
		Where("owner_id = ? AND title = ?", ownerID, defaultPropertyTitle).
		First(&property).Error
	if err == nil {
		return property, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return property, err
	}

	property = directorydomain.Property{
		ID:       node.Generate(),
		OwnerID:  ownerID,
		Title:    defaultPropertyTitle,
		Location: defaultPropertyLocation,
		Rent:     defaultPropertyRent,
	}
	if err := tx.WithContext(ctx).Create(&property).Error; err != nil {
		return property, err
	}
	return property, nil
}
