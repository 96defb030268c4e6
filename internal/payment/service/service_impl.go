package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/rentora/internal/audit/domain"
	"github.com/smallbiznis/rentora/internal/clock"
	"github.com/smallbiznis/rentora/internal/config"
	obsmetrics "github.com/smallbiznis/rentora/internal/observability/metrics"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
	paymentdomain "github.com/smallbiznis/rentora/internal/payment/domain"
	pkgdb "github.com/smallbiznis/rentora/pkg/db"
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
	Repo       paymentdomain.Repository
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
	repo       paymentdomain.Repository
	offers     offerdomain.Repository
	auditSvc   auditdomain.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	currency := p.Cfg.RentCurrency
	if currency == "" {
		currency = "INR"
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		currency:   currency,
		repo:       p.Repo,
		offers:     p.Offers,
		auditSvc:   p.AuditSvc,
		obsMetrics: p.ObsMetrics,
	}
}

// CreateTransaction opens a payment for the offer's outstanding advance request.
// A pending transaction is reused and its amount follows the latest request.
func (s *Service) CreateTransaction(ctx context.Context, tenantID, offerID snowflake.ID) (paymentdomain.Transaction, error) {
	if offerID == 0 {
		return paymentdomain.Transaction{}, offerdomain.ErrInvalidID
	}

	var (
		result  paymentdomain.Transaction
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		offer, err := s.offers.FindByIDForUpdate(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if offer == nil {
			return offerdomain.ErrOfferNotFound
		}
		if offer.TenantID != tenantID {
			return paymentdomain.ErrForbidden
		}

		now := s.clock.Now().UTC()
		if err := s.ensurePayable(ctx, tx, offer, now); err != nil {
			return err
		}
		amount := offer.RequestedAdvanceAmount.Decimal

		pending, err := s.repo.FindPendingByOffer(ctx, tx, offer.ID)
		if err != nil {
			return err
		}
		if pending != nil {
			if !pending.Amount.Equal(amount) {
				if _, err := s.repo.UpdatePendingAmount(ctx, tx, pending.ID, amount, now); err != nil {
					return err
				}
				pending.Amount = amount
				pending.UpdatedAt = now
			}
			if offer.PaymentTransactionID == nil || *offer.PaymentTransactionID != pending.ID {
				if err := s.offers.LinkPaymentTransaction(ctx, tx, offer.ID, pending.ID, now); err != nil {
					return err
				}
			}
			result = *pending
			return nil
		}

		txn := paymentdomain.Transaction{
			ID:        s.genID.Generate(),
			OfferID:   offer.ID,
			TenantID:  offer.TenantID,
			OwnerID:   offer.OwnerID,
			Amount:    amount,
			Currency:  s.currency,
			Status:    paymentdomain.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Insert(ctx, tx, &txn); err != nil {
			// Another request opened the pending transaction first.
			if pkgdb.IsDuplicateKeyErr(err) {
				return offerdomain.ErrConflict
			}
			return err
		}
		if err := s.offers.LinkPaymentTransaction(ctx, tx, offer.ID, txn.ID, now); err != nil {
			return err
		}
		if err := s.writeAuditLog(ctx, tx, tenantID, "payment.created", txn); err != nil {
			return err
		}

		result = txn
		created = true
		return nil
	})
	if err != nil {
		return paymentdomain.Transaction{}, err
	}

	if created {
		s.obsMetrics.RecordPaymentEvent(ctx, paymentdomain.EventCreated)
	}
	return result, nil
}

func (s *Service) ensurePayable(ctx context.Context, tx *gorm.DB, offer *offerdomain.Offer, now time.Time) error {
	if offer.Status == offerdomain.StatusRejected {
		return paymentdomain.ErrOfferRejected
	}
	if offer.ActionType != offerdomain.ActionAdvanceRequested ||
		!offer.RequestedAdvanceAmount.Valid ||
		!offer.RequestedAdvanceAmount.Decimal.IsPositive() {
		return paymentdomain.ErrNoAdvanceRequested
	}
	if offer.BookingVerified {
		return paymentdomain.ErrAlreadyPaid
	}
	if expires, ok := offer.AdvanceExpiresAt(); ok && now.After(expires) {
		return paymentdomain.ErrAdvanceExpired
	}
	if offer.PaymentTransactionID != nil {
		paid, err := s.IsTransactionPaid(ctx, tx, *offer.PaymentTransactionID)
		if err != nil {
			return err
		}
		if paid {
			return paymentdomain.ErrAlreadyPaid
		}
	}
	return nil
}

func (s *Service) MarkPaid(ctx context.Context, tenantID, transactionID snowflake.ID) (paymentdomain.Transaction, error) {
	if transactionID == 0 {
		return paymentdomain.Transaction{}, paymentdomain.ErrInvalidTransactionID
	}

	var (
		result  paymentdomain.Transaction
		changed bool
	)
	err := pkgdb.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		changed = false
		txn, err := s.loadForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if txn.TenantID != tenantID {
			return paymentdomain.ErrForbidden
		}
		if txn.Status == paymentdomain.StatusPaid {
			result = *txn
			return nil
		}
		if err := s.ensureAmountCurrent(ctx, tx, txn); err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		ok, err := s.repo.MarkPaid(ctx, tx, txn.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return offerdomain.ErrConflict
		}
		txn.Status = paymentdomain.StatusPaid
		txn.PaidAt = &now
		txn.UpdatedAt = now

		if err := s.writeAuditLog(ctx, tx, tenantID, "payment.marked_paid", *txn); err != nil {
			return err
		}
		result = *txn
		changed = true
		return nil
	})
	if err != nil {
		return paymentdomain.Transaction{}, err
	}

	if changed {
		s.obsMetrics.RecordPaymentEvent(ctx, paymentdomain.EventMarkedPaid)
	}
	return result, nil
}

// Verify records the owner's confirmation of receipt and mirrors it onto the
// offer's bookingVerified flag in the same database transaction.
func (s *Service) Verify(ctx context.Context, ownerID, transactionID snowflake.ID) (paymentdomain.Verification, error) {
	if transactionID == 0 {
		return paymentdomain.Verification{}, paymentdomain.ErrInvalidTransactionID
	}

	var (
		result  paymentdomain.Verification
		changed bool
	)
	err := pkgdb.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		changed = false
		txn, err := s.loadForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if txn.OwnerID != ownerID {
			return paymentdomain.ErrForbidden
		}
		if txn.Status != paymentdomain.StatusPaid {
			return paymentdomain.ErrNotPaid
		}

		if !txn.OwnerVerified {
			if err := s.ensureAmountCurrent(ctx, tx, txn); err != nil {
				return err
			}
			now := s.clock.Now().UTC()
			ok, err := s.repo.MarkVerified(ctx, tx, txn.ID, now)
			if err != nil {
				return err
			}
			if !ok {
				return offerdomain.ErrConflict
			}
			if err := s.offers.SetBookingVerified(ctx, tx, txn.OfferID, true, now); err != nil {
				return err
			}
			txn.OwnerVerified = true
			txn.OwnerVerifiedAt = &now
			txn.UpdatedAt = now

			if err := s.writeAuditLog(ctx, tx, ownerID, "payment.verified", *txn); err != nil {
				return err
			}
			changed = true
		}

		offer, err := s.offers.FindByID(ctx, tx, txn.OfferID)
		if err != nil {
			return err
		}
		if offer == nil {
			return offerdomain.ErrOfferNotFound
		}
		result = paymentdomain.Verification{Transaction: *txn, Offer: *offer}
		return nil
	})
	if err != nil {
		return paymentdomain.Verification{}, err
	}

	if changed {
		s.obsMetrics.RecordPaymentEvent(ctx, paymentdomain.EventVerified)
	}
	return result, nil
}

func (s *Service) ListForOffer(ctx context.Context, callerID, offerID snowflake.ID) ([]paymentdomain.Transaction, error) {
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

// Reconcile recomputes bookingVerified from the linked transaction and repairs
// the offer when the two disagree.
func (s *Service) Reconcile(ctx context.Context, ownerID, offerID snowflake.ID) (offerdomain.Offer, error) {
	if offerID == 0 {
		return offerdomain.Offer{}, offerdomain.ErrInvalidID
	}

	var (
		result   offerdomain.Offer
		repaired bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		offer, err := s.offers.FindByIDForUpdate(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if offer == nil {
			return offerdomain.ErrOfferNotFound
		}
		if offer.OwnerID != ownerID {
			return offerdomain.ErrForbidden
		}

		verified := false
		if offer.PaymentTransactionID != nil {
			txn, err := s.repo.FindByID(ctx, tx, *offer.PaymentTransactionID)
			if err != nil {
				return err
			}
			verified = txn != nil && txn.OwnerVerified
		}
		if verified == offer.BookingVerified {
			result = *offer
			return nil
		}

		now := s.clock.Now().UTC()
		if err := s.offers.SetBookingVerified(ctx, tx, offer.ID, verified, now); err != nil {
			return err
		}
		if err := s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorID:    ownerID,
			Action:     "offer.booking_reconciled",
			TargetType: auditdomain.TargetTypeOffer,
			TargetID:   offer.ID,
			Metadata: map[string]any{
				"from": offer.BookingVerified,
				"to":   verified,
			},
		}); err != nil {
			return err
		}
		s.log.Warn("booking flag drifted from ledger",
			zap.String("offer_id", offer.ID.String()),
			zap.Bool("booking_verified", offer.BookingVerified),
			zap.Bool("ledger_verified", verified),
		)

		offer.BookingVerified = verified
		offer.UpdatedAt = now
		offer.Version++
		result = *offer
		repaired = true
		return nil
	})
	if err != nil {
		return offerdomain.Offer{}, err
	}

	if repaired {
		s.obsMetrics.RecordPaymentEvent(ctx, paymentdomain.EventReconciled)
	}
	return result, nil
}

func (s *Service) IsTransactionPaid(ctx context.Context, tx *gorm.DB, transactionID snowflake.ID) (bool, error) {
	if tx == nil {
		tx = s.db
	}
	txn, err := s.repo.FindByID(ctx, tx, transactionID)
	if err != nil {
		return false, err
	}
	return txn != nil && txn.Status == paymentdomain.StatusPaid, nil
}

// SyncPendingAmount keeps an open transaction in step with a re-requested advance.
func (s *Service) SyncPendingAmount(ctx context.Context, tx *gorm.DB, transactionID snowflake.ID, amount decimal.Decimal, at time.Time) error {
	if tx == nil {
		tx = s.db
	}
	txn, err := s.repo.FindByIDForUpdate(ctx, tx, transactionID)
	if err != nil {
		return err
	}
	if txn == nil || txn.Status != paymentdomain.StatusPending || txn.Amount.Equal(amount) {
		return nil
	}
	if _, err := s.repo.UpdatePendingAmount(ctx, tx, txn.ID, amount, at); err != nil {
		return err
	}
	s.log.Info("pending payment amount refreshed",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("from", txn.Amount.String()),
		zap.String("to", amount.String()),
	)
	return nil
}

// ensureAmountCurrent refuses to settle a transaction whose amount no longer
// matches the advance the owner is asking for.
func (s *Service) ensureAmountCurrent(ctx context.Context, tx *gorm.DB, txn *paymentdomain.Transaction) error {
	offer, err := s.offers.FindByID(ctx, tx, txn.OfferID)
	if err != nil {
		return err
	}
	if offer == nil {
		return offerdomain.ErrOfferNotFound
	}
	if !offer.RequestedAdvanceAmount.Valid || !offer.RequestedAdvanceAmount.Decimal.Equal(txn.Amount) {
		return paymentdomain.ErrAmountMismatch
	}
	return nil
}

func (s *Service) loadForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*paymentdomain.Transaction, error) {
	txn, err := s.repo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, paymentdomain.ErrTransactionNotFound
	}
	return txn, nil
}

func (s *Service) writeAuditLog(ctx context.Context, tx *gorm.DB, actorID snowflake.ID, action string, txn paymentdomain.Transaction) error {
	return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
		ActorID:    actorID,
		Action:     action,
		TargetType: auditdomain.TargetTypePayment,
		TargetID:   txn.ID,
		Metadata: map[string]any{
			"offer_id": txn.OfferID.String(),
			"amount":   txn.Amount.String(),
			"currency": txn.Currency,
			"status":   string(txn.Status),
		},
	})
}
