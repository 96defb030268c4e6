package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentora/internal/directory/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindPropertyByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Property, error) {
	var property domain.Property
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_id, title, location, rent FROM properties WHERE id = ?`,
		id,
	).Scan(&property).Error
	if err != nil {
		return nil, err
	}
	if property.ID == 0 {
		return nil, nil
	}
	return &property, nil
}

func (r *repo) FindPropertiesByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.Property, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var properties []domain.Property
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_id, title, location, rent FROM properties WHERE id IN ?`,
		ids,
	).Scan(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *repo) FindUsersByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []domain.UserProfile
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, email, phone, avatar_url FROM users WHERE id IN ?`,
		ids,
	).Scan(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
