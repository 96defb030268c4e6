package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Entry describes one state transition to append to the trail.
type Entry struct {
	ActorID    snowflake.ID
	Action     string
	TargetType string
	TargetID   snowflake.ID
	Metadata   map[string]any
}

type Service interface {
	// Record appends entry using tx so the log commits with the transition it describes.
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	ListForTarget(ctx context.Context, targetType string, targetID snowflake.ID) ([]AuditLog, error)
}

var (
	ErrInvalidAction = errors.New("invalid_action")
	ErrInvalidTarget = errors.New("invalid_target")
)
