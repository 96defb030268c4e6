package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	TargetTypeOffer      = "offer"
	TargetTypePayment    = "payment_transaction"
	TargetTypeRentRecord = "rent_month_record"
)

type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorID    snowflake.ID      `gorm:"not null;index" json:"actorId"`
	Action     string            `gorm:"not null" json:"action"`
	TargetType string            `gorm:"not null;index:idx_audit_logs_target,priority:1" json:"targetType"`
	TargetID   snowflake.ID      `gorm:"not null;index:idx_audit_logs_target,priority:2" json:"targetId"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	RequestID  string            `json:"requestId,omitempty"`
	CreatedAt  time.Time         `gorm:"not null" json:"createdAt"`
}

func (AuditLog) TableName() string { return "audit_logs" }
