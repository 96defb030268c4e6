package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/rentora/internal/audit/domain"
	"github.com/smallbiznis/rentora/internal/clock"
	"github.com/smallbiznis/rentora/internal/config"
	obsmetrics "github.com/smallbiznis/rentora/internal/observability/metrics"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
	rentdomain "github.com/smallbiznis/rentora/internal/rent/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Cfg        config.Config
	Policy     *config.PolicyHolder
	Repo       rentdomain.Repository
	Offers     offerdomain.Repository
	AuditSvc   auditdomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	currency   string
	policy     *config.PolicyHolder
	repo       rentdomain.Repository
	offers     offerdomain.Repository
	auditSvc   auditdomain.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) rentdomain.Service {
	currency := p.Cfg.RentCurrency
	if currency == "" {
		currency = "INR"
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("rent.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		currency:   currency,
		policy:     p.Policy,
		repo:       p.Repo,
		offers:     p.Offers,
		auditSvc:   p.AuditSvc,
		obsMetrics: p.ObsMetrics,
	}
}

type schedule struct {
	start  time.Time
	months int
	dueDay int
}

func (s *Service) parseSchedule(req rentdomain.GenerateRequest) (schedule, error) {
	start, err := time.Parse(rentdomain.MonthLayout, strings.TrimSpace(req.StartMonth))
	if err != nil {
		return schedule{}, rentdomain.ErrInvalidStartMonth
	}
	if req.Months < 1 || req.Months > s.policy.Get().MaxRentScheduleMonths {
		return schedule{}, rentdomain.ErrInvalidMonths
	}
	dueDay := rentdomain.DefaultDueDay
	if req.DueDay != nil {
		dueDay = *req.DueDay
	}
	if dueDay < 1 || dueDay > rentdomain.MaxDueDay {
		return schedule{}, rentdomain.ErrInvalidDueDay
	}
	return schedule{start: start.UTC(), months: req.Months, dueDay: dueDay}, nil
}

// Generate writes one pending record per month starting at StartMonth.
// Months already on the schedule are left untouched.
func (s *Service) Generate(ctx context.Context, req rentdomain.GenerateRequest) (rentdomain.GenerateResult, error) {
	if req.OfferID == 0 {
		return rentdomain.GenerateResult{}, offerdomain.ErrInvalidID
	}

	var result rentdomain.GenerateResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		offer, err := s.offers.FindByIDForUpdate(ctx, tx, req.OfferID)
		if err != nil {
			return err
		}
		if offer == nil {
			return offerdomain.ErrOfferNotFound
		}
		if offer.OwnerID != req.OwnerID {
			return offerdomain.ErrForbidden
		}

		plan, err := s.parseSchedule(req)
		if err != nil {
			return err
		}
		if offer.Status != offerdomain.StatusAccepted || !offer.TenantMoveInConfirmed {
			return rentdomain.ErrOfferNotSettled
		}

		now := s.clock.Now().UTC()
		created := 0
		for i := 0; i < plan.months; i++ {
			month := plan.start.AddDate(0, i, 0)
			record := rentdomain.RentMonthRecord{
				ID:         s.genID.Generate(),
				OfferID:    offer.ID,
				PropertyID: offer.PropertyID,
				TenantID:   offer.TenantID,
				OwnerID:    offer.OwnerID,
				RentMonth:  month.Format(rentdomain.MonthLayout),
				DueDate:    time.Date(month.Year(), month.Month(), plan.dueDay, 0, 0, 0, 0, time.UTC),
				Amount:     offer.OfferRent,
				Currency:   s.currency,
				Status:     rentdomain.StatusPending,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			inserted, err := s.repo.InsertIfAbsent(ctx, tx, &record)
			if err != nil {
				return err
			}
			if inserted {
				created++
			}
		}

		if created > 0 {
			if err := s.auditSvc.Record(ctx, tx, auditdomain.Entry{
				ActorID:    req.OwnerID,
				Action:     "rent.schedule_generated",
				TargetType: auditdomain.TargetTypeOffer,
				TargetID:   offer.ID,
				Metadata: map[string]any{
					"start_month": plan.start.Format(rentdomain.MonthLayout),
					"months":      plan.months,
					"created":     created,
				},
			}); err != nil {
				return err
			}
		}

		records, err := s.repo.ListByOffer(ctx, tx, offer.ID)
		if err != nil {
			return err
		}
		result = rentdomain.GenerateResult{Created: created, Records: records}
		return nil
	})
	if err != nil {
		return rentdomain.GenerateResult{}, err
	}

	s.obsMetrics.RecordRentRecords(ctx, rentdomain.EventGenerated, result.Created)
	return result, nil
}

func (s *Service) List(ctx context.Context, callerID, offerID snowflake.ID) ([]rentdomain.RentMonthRecord, error) {
	if offerID == 0 {
		return nil, offerdomain.ErrInvalidID
	}
	offer, err := s.offers.FindByID(ctx, s.db, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, offerdomain.ErrOfferNotFound
	}
	if offer.OwnerID != callerID && offer.TenantID != callerID {
		return nil, offerdomain.ErrForbidden
	}
	return s.repo.ListByOffer(ctx, s.db, offerID)
}

func (s *Service) MarkPaid(ctx context.Context, req rentdomain.MarkPaidRequest) (rentdomain.RentMonthRecord, error) {
	if req.RecordID == 0 {
		return rentdomain.RentMonthRecord{}, rentdomain.ErrInvalidRecordID
	}

	var (
		result  rentdomain.RentMonthRecord
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.repo.FindByIDForUpdate(ctx, tx, req.RecordID)
		if err != nil {
			return err
		}
		if record == nil {
			return rentdomain.ErrRecordNotFound
		}
		if record.OwnerID != req.OwnerID {
			return rentdomain.ErrForbidden
		}
		if record.Status == rentdomain.StatusPaid {
			result = *record
			return nil
		}

		now := s.clock.Now().UTC()
		ok, err := s.repo.MarkPaid(ctx, tx, record.ID, req.PaymentTransactionID, now)
		if err != nil {
			return err
		}
		if !ok {
			return offerdomain.ErrConflict
		}
		record.Status = rentdomain.StatusPaid
		record.PaidAt = &now
		record.PaymentTransactionID = req.PaymentTransactionID
		record.UpdatedAt = now

		metadata := map[string]any{
			"offer_id":   record.OfferID.String(),
			"rent_month": record.RentMonth,
			"amount":     record.Amount.String(),
		}
		if req.PaymentTransactionID != nil {
			metadata["payment_transaction_id"] = req.PaymentTransactionID.String()
		}
		if err := s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorID:    req.OwnerID,
			Action:     "rent.marked_paid",
			TargetType: auditdomain.TargetTypeRentRecord,
			TargetID:   record.ID,
			Metadata:   metadata,
		}); err != nil {
			return err
		}

		result = *record
		changed = true
		return nil
	})
	if err != nil {
		return rentdomain.RentMonthRecord{}, err
	}

	if changed {
		s.obsMetrics.RecordRentRecords(ctx, rentdomain.EventPaid, 1)
	}
	return result, nil
}
