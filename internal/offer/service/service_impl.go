package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/rentora/internal/audit/domain"
	"github.com/smallbiznis/rentora/internal/clock"
	"github.com/smallbiznis/rentora/internal/config"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	"github.com/smallbiznis/rentora/internal/observability/metrics"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
	pkgdb "github.com/smallbiznis/rentora/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      offerdomain.Repository
	Directory directorydomain.Service
	Audit     auditdomain.Service
	Policy    *config.PolicyHolder
	Payments  offerdomain.PaymentState   `optional:"true"`
	Locker    offerdomain.MutationLocker `optional:"true"`
	Metrics   *metrics.Metrics           `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      offerdomain.Repository
	directory directorydomain.Service
	audit     auditdomain.Service
	policy    *config.PolicyHolder
	payments  offerdomain.PaymentState
	locker    offerdomain.MutationLocker
	metrics   *metrics.Metrics
}

func New(p Params) offerdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("offer.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		directory: p.Directory,
		audit:     p.Audit,
		policy:    p.Policy,
		payments:  p.Payments,
		locker:    p.Locker,
		metrics:   p.Metrics,
	}
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// mutate runs fn against the locked offer inside one transaction. fn reports
// whether it changed anything; unchanged offers are returned without a write.
func (s *Service) mutate(
	ctx context.Context,
	ownerID, offerID snowflake.ID,
	action string,
	fn func(tx *gorm.DB, offer *offerdomain.Offer, now time.Time) (map[string]any, bool, error),
) (offerdomain.Offer, error) {
	if offerID == 0 {
		return offerdomain.Offer{}, offerdomain.ErrInvalidID
	}

	release, err := s.lock(ctx, offerID)
	if err != nil {
		return offerdomain.Offer{}, err
	}
	defer release()

	var (
		result  offerdomain.Offer
		changed bool
	)
	err = pkgdb.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		result, changed = offerdomain.Offer{}, false
		offer, err := s.repo.FindByIDForUpdate(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if offer == nil {
			return offerdomain.ErrOfferNotFound
		}
		if offer.OwnerID != ownerID {
			return offerdomain.ErrForbidden
		}

		now := s.now()
		metadata, didChange, err := fn(tx, offer, now)
		if err != nil {
			return err
		}
		if !didChange {
			result = *offer
			return nil
		}

		offer.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, offer); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			ActorID:    ownerID,
			Action:     action,
			TargetType: auditdomain.TargetTypeOffer,
			TargetID:   offer.ID,
			Metadata:   metadata,
		}); err != nil {
			return err
		}

		result = *offer
		changed = true
		return nil
	})
	if err != nil {
		if errors.Is(err, offerdomain.ErrConflict) {
			s.log.Info("offer update lost race", zap.String("offer_id", offerID.String()), zap.String("action", action))
		}
		return offerdomain.Offer{}, err
	}

	if changed {
		s.metrics.RecordOfferTransition(ctx, action, string(result.Status))
	}
	return result, nil
}

func (s *Service) lock(ctx context.Context, offerID snowflake.ID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	return s.locker.LockOffer(ctx, offerID.Int64())
}
