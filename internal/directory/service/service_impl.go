package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentora/internal/cache"
	"github.com/smallbiznis/rentora/internal/directory/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const propertyTTL = time.Minute

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       domain.Repository
	properties cache.Cache[snowflake.ID, domain.Property]
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("directory.service"),
		repo:       p.Repo,
		properties: cache.NewTTLCache[snowflake.ID, domain.Property](),
	}
}

// GetProperty always reads the store: offers take their owner from it.
// The fresh row replaces whatever listings have cached.
func (s *Service) GetProperty(ctx context.Context, id snowflake.ID) (domain.Property, error) {
	if id == 0 {
		return domain.Property{}, domain.ErrPropertyNotFound
	}

	property, err := s.repo.FindPropertyByID(ctx, s.db, id)
	if err != nil {
		return domain.Property{}, err
	}
	if property == nil {
		s.properties.Delete(id)
		return domain.Property{}, domain.ErrPropertyNotFound
	}

	s.properties.Set(id, *property, propertyTTL)
	return *property, nil
}

// GetProperties returns the properties that exist; unknown ids are omitted.
// Results may be up to propertyTTL old, which is fine for listing joins.
func (s *Service) GetProperties(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]domain.Property, error) {
	out := make(map[snowflake.ID]domain.Property, len(ids))
	missing := make([]snowflake.ID, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		if property, ok := s.properties.Get(id); ok {
			out[id] = property
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	properties, err := s.repo.FindPropertiesByIDs(ctx, s.db, missing)
	if err != nil {
		return nil, err
	}
	for _, property := range properties {
		out[property.ID] = property
		s.properties.Set(property.ID, property, propertyTTL)
	}
	return out, nil
}

func (s *Service) GetUsers(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]domain.UserProfile, error) {
	users, err := s.repo.FindUsersByIDs(ctx, s.db, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[snowflake.ID]domain.UserProfile, len(users))
	for _, user := range users {
		out[user.ID] = user
	}
	return out, nil
}

func uniqueIDs(ids []snowflake.ID) []snowflake.ID {
	seen := make(map[snowflake.ID]struct{}, len(ids))
	out := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
