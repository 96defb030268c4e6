package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentora/internal/audit/domain"
	"gorm.io/gorm"
)

// maxTrail caps one listing; a single offer never comes close.
const maxTrail = 500

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Insert appends one entry. Audit rows are never updated.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) ListByTarget(ctx context.Context, db *gorm.DB, targetType string, targetID snowflake.ID) ([]domain.AuditLog, error) {
	logs := make([]domain.AuditLog, 0)
	err := db.WithContext(ctx).
		Where(&domain.AuditLog{TargetType: targetType, TargetID: targetID}).
		Order("created_at, id").
		Limit(maxTrail).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
