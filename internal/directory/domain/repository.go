package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindPropertyByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Property, error)
	FindPropertiesByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Property, error)
	FindUsersByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]UserProfile, error)
}
