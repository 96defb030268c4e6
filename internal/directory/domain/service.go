package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

//go:generate mockgen -source=service.go -destination=../mocks/mock_service.go -package=mocks
type Service interface {
	GetProperty(ctx context.Context, id snowflake.ID) (Property, error)
	GetProperties(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]Property, error)
	GetUsers(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]UserProfile, error)
}

var ErrPropertyNotFound = errors.New("property_not_found")
