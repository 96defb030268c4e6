package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/rentora/internal/audit/domain"
	auditrepo "github.com/smallbiznis/rentora/internal/audit/repository"
	auditservice "github.com/smallbiznis/rentora/internal/audit/service"
	"github.com/smallbiznis/rentora/internal/clock"
	"github.com/smallbiznis/rentora/internal/config"
	directorydomain "github.com/smallbiznis/rentora/internal/directory/domain"
	"github.com/smallbiznis/rentora/internal/directory/mocks"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
	"github.com/smallbiznis/rentora/internal/offer/repository"
	"github.com/smallbiznis/rentora/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ownerID    snowflake.ID = 100
	otherOwner snowflake.ID = 101
	tenantID   snowflake.ID = 200
	propertyID snowflake.ID = 300
)

type fakePayments struct {
	paid   bool
	synced []decimal.Decimal
}

func (f *fakePayments) IsTransactionPaid(context.Context, *gorm.DB, snowflake.ID) (bool, error) {
	return f.paid, nil
}

func (f *fakePayments) SyncPendingAmount(_ context.Context, _ *gorm.DB, _ snowflake.ID, amount decimal.Decimal, _ time.Time) error {
	f.synced = append(f.synced, amount)
	return nil
}

type fixture struct {
	db        *gorm.DB
	svc       offerdomain.Service
	repo      offerdomain.Repository
	audit     auditdomain.Service
	directory *mocks.MockService
	clock     *clock.FakeClock
	payments  *fakePayments
}

func newFixture(t *testing.T, policy config.NegotiationPolicy) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&offerdomain.Offer{}, &auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	directory := mocks.NewMockService(ctrl)
	directory.EXPECT().
		GetProperty(gomock.Any(), propertyID).
		Return(directorydomain.Property{ID: propertyID, OwnerID: ownerID, Title: "2BHK Baner", Rent: decimal.NewFromInt(16000)}, nil).
		AnyTimes()
	directory.EXPECT().
		GetProperty(gomock.Any(), gomock.Not(propertyID)).
		Return(directorydomain.Property{}, directorydomain.ErrPropertyNotFound).
		AnyTimes()

	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	audit := auditservice.NewService(auditservice.Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fakeClock,
		Repo:  auditrepo.Provide(),
	})

	repo := repository.Provide()
	payments := &fakePayments{}
	svc := New(Params{
		DB:        conn,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     fakeClock,
		Repo:      repo,
		Directory: directory,
		Audit:     audit,
		Policy:    config.NewStaticPolicyHolder(policy),
		Payments:  payments,
	})

	return &fixture{
		db:        conn,
		svc:       svc,
		repo:      repo,
		audit:     audit,
		directory: directory,
		clock:     fakeClock,
		payments:  payments,
	}
}

func (f *fixture) createOffer(t *testing.T) offerdomain.Offer {
	t.Helper()
	offer, err := f.svc.Create(context.Background(), offerdomain.CreateOfferRequest{
		TenantID:            tenantID,
		PropertyID:          propertyID,
		OfferRent:           decimal.NewFromInt(15000),
		JoiningDateEstimate: "2025-01-01",
	})
	require.NoError(t, err)
	return offer
}

func (f *fixture) reload(t *testing.T, id snowflake.ID) offerdomain.Offer {
	t.Helper()
	offer, err := f.repo.FindByID(context.Background(), f.db, id)
	require.NoError(t, err)
	require.NotNil(t, offer)
	return *offer
}

func days(v string) *string { return &v }

func str(v string) *string { return &v }

func TestCreateDenormalizesOwnerFromProperty(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())

	offer := f.createOffer(t)

	assert.Equal(t, ownerID, offer.OwnerID)
	assert.Equal(t, offerdomain.StatusPending, offer.Status)
	assert.Equal(t, offerdomain.ActionNone, offer.ActionType)
	assert.Equal(t, 0.0, offer.MatchPercent)
	assert.Equal(t, int64(1), offer.Version)

	stored := f.reload(t, offer.ID)
	assert.Equal(t, ownerID, stored.OwnerID)
	assert.True(t, stored.OfferRent.Equal(decimal.NewFromInt(15000)))

	logs, err := f.audit.ListForTarget(context.Background(), auditdomain.TargetTypeOffer, offer.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, ActionCreated, logs[0].Action)
	assert.Equal(t, tenantID, logs[0].ActorID)
}

func TestCreateValidation(t *testing.T) {
	negative := decimal.NewFromInt(-1)
	subCent := decimal.RequireFromString("0.005")
	tests := []struct {
		name string
		req  offerdomain.CreateOfferRequest
		want error
	}{
		{
			name: "missing rent",
			req:  offerdomain.CreateOfferRequest{TenantID: tenantID, PropertyID: propertyID, JoiningDateEstimate: "2025-01-01"},
			want: offerdomain.ErrInvalidOfferRent,
		},
		{
			name: "rent with sub-cent precision",
			req:  offerdomain.CreateOfferRequest{TenantID: tenantID, PropertyID: propertyID, OfferRent: decimal.RequireFromString("0.004"), JoiningDateEstimate: "soon"},
			want: offerdomain.ErrInvalidOfferRent,
		},
		{
			name: "rent beyond column range",
			req:  offerdomain.CreateOfferRequest{TenantID: tenantID, PropertyID: propertyID, OfferRent: decimal.New(1, 10), JoiningDateEstimate: "soon"},
			want: offerdomain.ErrInvalidOfferRent,
		},
		{
			name: "booking amount with sub-cent precision",
			req:  offerdomain.CreateOfferRequest{TenantID: tenantID, PropertyID: propertyID, OfferRent: decimal.NewFromInt(10), JoiningDateEstimate: "soon", OfferBookingAmount: &subCent},
			want: offerdomain.ErrInvalidAmount,
		},
		{
			name: "blank joining date",
			req:  offerdomain.CreateOfferRequest{TenantID: tenantID, PropertyID: propertyID, OfferRent: decimal.NewFromInt(10), JoiningDateEstimate: "  "},
			want: offerdomain.ErrInvalidJoiningDate,
		},
		{
			name: "negative advance",
			req:  offerdomain.CreateOfferRequest{TenantID: tenantID, PropertyID: propertyID, OfferRent: decimal.NewFromInt(10), JoiningDateEstimate: "soon", OfferAdvance: &negative},
			want: offerdomain.ErrInvalidAmount,
		},
		{
			name: "unknown property",
			req:  offerdomain.CreateOfferRequest{TenantID: tenantID, PropertyID: 999, OfferRent: decimal.NewFromInt(10), JoiningDateEstimate: "soon"},
			want: directorydomain.ErrPropertyNotFound,
		},
		{
			name: "own property",
			req:  offerdomain.CreateOfferRequest{TenantID: ownerID, PropertyID: propertyID, OfferRent: decimal.NewFromInt(10), JoiningDateEstimate: "soon"},
			want: offerdomain.ErrOwnProperty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.DefaultNegotiationPolicy())
			_, err := f.svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateClampsMatchPercent(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	over := 140.0

	offer, err := f.svc.Create(context.Background(), offerdomain.CreateOfferRequest{
		TenantID:            tenantID,
		PropertyID:          propertyID,
		OfferRent:           decimal.NewFromInt(12000),
		JoiningDateEstimate: "next month",
		MatchPercent:        &over,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, offer.MatchPercent)
}

func TestGetRestrictsToParticipants(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	offer := f.createOffer(t)

	_, err := f.svc.Get(context.Background(), tenantID, offer.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(context.Background(), ownerID, offer.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(context.Background(), otherOwner, offer.ID)
	assert.ErrorIs(t, err, offerdomain.ErrForbidden)
	_, err = f.svc.Get(context.Background(), ownerID, 42)
	assert.ErrorIs(t, err, offerdomain.ErrOfferNotFound)
}

func TestListsAreNewestFirstAndJoined(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	f.directory.EXPECT().
		GetProperties(gomock.Any(), gomock.Any()).
		Return(map[snowflake.ID]directorydomain.Property{propertyID: {ID: propertyID, OwnerID: ownerID, Title: "2BHK Baner"}}, nil).
		AnyTimes()
	f.directory.EXPECT().
		GetUsers(gomock.Any(), gomock.Any()).
		Return(map[snowflake.ID]directorydomain.UserProfile{
			tenantID: {ID: tenantID, Name: "Meera"},
			ownerID:  {ID: ownerID, Name: "Arjun"},
		}, nil).
		AnyTimes()

	first := f.createOffer(t)
	second := f.createOffer(t)
	f.clock.Advance(time.Minute)
	third := f.createOffer(t)

	received, err := f.svc.ListReceived(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, received, 3)
	assert.Equal(t, []snowflake.ID{third.ID, second.ID, first.ID}, []snowflake.ID{received[0].ID, received[1].ID, received[2].ID})
	require.NotNil(t, received[0].Tenant)
	assert.Equal(t, "Meera", received[0].Tenant.Name)
	assert.Nil(t, received[0].Owner)
	require.NotNil(t, received[0].Property)
	assert.Equal(t, "2BHK Baner", received[0].Property.Title)

	sent, err := f.svc.ListSent(context.Background(), tenantID)
	require.NoError(t, err)
	require.Len(t, sent, 3)
	require.NotNil(t, sent[0].Owner)
	assert.Equal(t, "Arjun", sent[0].Owner.Name)

	empty, err := f.svc.ListSent(context.Background(), otherOwner)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestHistoryScopesToOwnerPair(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	first := f.createOffer(t)
	second := f.createOffer(t)

	history, err := f.svc.History(context.Background(), ownerID, propertyID, tenantID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	foreign, err := f.svc.History(context.Background(), otherOwner, propertyID, tenantID)
	require.NoError(t, err)
	assert.Empty(t, foreign)

	_, err = f.svc.History(context.Background(), ownerID, 0, tenantID)
	assert.ErrorIs(t, err, offerdomain.ErrInvalidPropertyID)
}

func TestRequestAdvance(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	offer := f.createOffer(t)

	updated, err := f.svc.RequestAdvance(context.Background(), offerdomain.RequestAdvanceRequest{
		OwnerID:             ownerID,
		OfferID:             offer.ID,
		Amount:              "5000",
		ValidityDays:        days("7.9"),
		ProposedMeetingTime: str("2026-03-05T18:30:00Z"),
		DesiredJoiningDate:  str("2026-04-01"),
	})
	require.NoError(t, err)

	assert.True(t, updated.RequestedAdvanceAmount.Valid)
	assert.True(t, updated.RequestedAdvanceAmount.Decimal.Equal(decimal.NewFromInt(5000)))
	require.NotNil(t, updated.RequestedAdvanceValidityDays)
	assert.Equal(t, 7, *updated.RequestedAdvanceValidityDays)
	assert.Equal(t, offerdomain.ActionAdvanceRequested, updated.ActionType)
	assert.Equal(t, offerdomain.StatusPending, updated.Status)
	assert.Equal(t, int64(2), updated.Version)

	expires, ok := updated.AdvanceExpiresAt()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC), expires)

	stored := f.reload(t, offer.ID)
	assert.Equal(t, offerdomain.ActionAdvanceRequested, stored.ActionType)
	require.NotNil(t, stored.DesiredJoiningDate)
	assert.Equal(t, "2026-04-01", stored.DesiredJoiningDate.Format("2006-01-02"))
}

func TestRequestAdvanceRejectsBadInputWithoutMutation(t *testing.T) {
	tests := []struct {
		name string
		req  offerdomain.RequestAdvanceRequest
		want error
	}{
		{name: "negative amount", req: offerdomain.RequestAdvanceRequest{Amount: "-10"}, want: offerdomain.ErrInvalidAdvanceAmount},
		{name: "zero amount", req: offerdomain.RequestAdvanceRequest{Amount: "0"}, want: offerdomain.ErrInvalidAdvanceAmount},
		{name: "missing amount", req: offerdomain.RequestAdvanceRequest{}, want: offerdomain.ErrInvalidAdvanceAmount},
		{name: "non-numeric amount", req: offerdomain.RequestAdvanceRequest{Amount: "abc"}, want: offerdomain.ErrInvalidAdvanceAmount},
		{name: "sub-cent amount", req: offerdomain.RequestAdvanceRequest{Amount: "0.004"}, want: offerdomain.ErrInvalidAdvanceAmount},
		{name: "half-cent amount", req: offerdomain.RequestAdvanceRequest{Amount: "0.005"}, want: offerdomain.ErrInvalidAdvanceAmount},
		{name: "amount beyond column range", req: offerdomain.RequestAdvanceRequest{Amount: "1e10"}, want: offerdomain.ErrInvalidAdvanceAmount},
		{name: "non-numeric validity", req: offerdomain.RequestAdvanceRequest{Amount: "10", ValidityDays: days("soon")}, want: offerdomain.ErrInvalidValidityDays},
		{name: "malformed body", req: offerdomain.RequestAdvanceRequest{Amount: "10", MalformedBody: true}, want: offerdomain.ErrMalformedBody},
		{name: "fractional validity below one", req: offerdomain.RequestAdvanceRequest{Amount: "10", ValidityDays: days("0.5")}, want: offerdomain.ErrInvalidValidityDays},
		{name: "validity over policy", req: offerdomain.RequestAdvanceRequest{Amount: "10", ValidityDays: days("365")}, want: offerdomain.ErrValidityTooLong},
		{name: "bad meeting time", req: offerdomain.RequestAdvanceRequest{Amount: "10", ProposedMeetingTime: str("tomorrow")}, want: offerdomain.ErrInvalidMeetingTime},
		{name: "bad joining date", req: offerdomain.RequestAdvanceRequest{Amount: "10", DesiredJoiningDate: str("2026-13-40")}, want: offerdomain.ErrInvalidDesiredDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.DefaultNegotiationPolicy())
			offer := f.createOffer(t)

			req := tt.req
			req.OwnerID = ownerID
			req.OfferID = offer.ID
			_, err := f.svc.RequestAdvance(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)

			stored := f.reload(t, offer.ID)
			assert.False(t, stored.RequestedAdvanceAmount.Valid)
			assert.Equal(t, offerdomain.ActionNone, stored.ActionType)
			assert.Equal(t, int64(1), stored.Version)
		})
	}
}

func TestOwnerChecksPrecedeBusinessRules(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	offer := f.createOffer(t)
	ctx := context.Background()

	_, err := f.svc.RequestAdvance(ctx, offerdomain.RequestAdvanceRequest{OwnerID: otherOwner, OfferID: offer.ID, Amount: "-10"})
	assert.ErrorIs(t, err, offerdomain.ErrForbidden)

	_, err = f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: otherOwner, OfferID: offer.ID, Status: "bogus"})
	assert.ErrorIs(t, err, offerdomain.ErrForbidden)

	_, err = f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: otherOwner, OfferID: offer.ID})
	assert.ErrorIs(t, err, offerdomain.ErrForbidden)

	_, err = f.svc.RequestAdvance(ctx, offerdomain.RequestAdvanceRequest{OwnerID: otherOwner, OfferID: offer.ID, Amount: "abc"})
	assert.ErrorIs(t, err, offerdomain.ErrForbidden)

	_, err = f.svc.RequestAdvance(ctx, offerdomain.RequestAdvanceRequest{OwnerID: otherOwner, OfferID: offer.ID, MalformedBody: true})
	assert.ErrorIs(t, err, offerdomain.ErrForbidden)

	_, err = f.svc.RequestAdvance(ctx, offerdomain.RequestAdvanceRequest{OwnerID: ownerID, OfferID: 12345})
	assert.ErrorIs(t, err, offerdomain.ErrOfferNotFound)

	_, err = f.svc.ConfirmMoveIn(ctx, tenantID, offer.ID)
	assert.ErrorIs(t, err, offerdomain.ErrForbidden)

	_, err = f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: 12345, Status: "bogus"})
	assert.ErrorIs(t, err, offerdomain.ErrOfferNotFound)

	stored := f.reload(t, offer.ID)
	assert.Equal(t, offerdomain.StatusPending, stored.Status)
	assert.Equal(t, int64(1), stored.Version)
}

func TestRequestAdvanceRefusedOncePaid(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	offer := f.createOffer(t)
	ctx := context.Background()
	require.NoError(t, f.repo.LinkPaymentTransaction(ctx, f.db, offer.ID, 777, f.clock.Now()))

	req := offerdomain.RequestAdvanceRequest{OwnerID: ownerID, OfferID: offer.ID, Amount: "2000"}
	_, err := f.svc.RequestAdvance(ctx, req)
	require.NoError(t, err)

	f.payments.paid = true
	_, err = f.svc.RequestAdvance(ctx, req)
	assert.ErrorIs(t, err, offerdomain.ErrAdvanceAlreadyPaid)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	offer := f.createOffer(t)
	ctx := context.Background()

	_, err := f.svc.RequestAdvance(ctx, offerdomain.RequestAdvanceRequest{OwnerID: ownerID, OfferID: offer.ID, Amount: "3000"})
	require.NoError(t, err)

	same, err := f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: offer.ID, Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, offerdomain.StatusPending, same.Status)
	assert.Equal(t, offerdomain.ActionAdvanceRequested, same.ActionType)
	assert.Equal(t, int64(2), same.Version)

	_, err = f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: offer.ID, Status: "withdrawn"})
	assert.ErrorIs(t, err, offerdomain.ErrInvalidStatus)
	_, err = f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: offer.ID, Status: "  "})
	assert.ErrorIs(t, err, offerdomain.ErrStatusRequired)
	unchanged := f.reload(t, offer.ID)
	assert.Equal(t, offerdomain.StatusPending, unchanged.Status)
	assert.Equal(t, int64(2), unchanged.Version)

	held, err := f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: offer.ID, Status: "  ON_HOLD "})
	require.NoError(t, err)
	assert.Equal(t, offerdomain.StatusOnHold, held.Status)

	reverted, err := f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: offer.ID, Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, offerdomain.StatusPending, reverted.Status)

	logs, err := f.audit.ListForTarget(ctx, auditdomain.TargetTypeOffer, offer.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 4)
}

func TestAcceptedIsTerminalByPolicy(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	offer := f.createOffer(t)
	ctx := context.Background()

	_, err := f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: offer.ID, Status: "accepted"})
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: offer.ID, Status: "pending"})
	assert.ErrorIs(t, err, offerdomain.ErrAlreadyAccepted)
	assert.Equal(t, offerdomain.StatusAccepted, f.reload(t, offer.ID).Status)

	permissive := config.DefaultNegotiationPolicy()
	permissive.AcceptedIsTerminal = false
	f = newFixture(t, permissive)
	offer = f.createOffer(t)

	_, err = f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: offer.ID, Status: "accepted"})
	require.NoError(t, err)
	reverted, err := f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: offer.ID, Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, offerdomain.StatusPending, reverted.Status)
}

func TestConfirmMoveIn(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	offer := f.createOffer(t)
	ctx := context.Background()

	_, err := f.svc.ConfirmMoveIn(ctx, ownerID, offer.ID)
	assert.ErrorIs(t, err, offerdomain.ErrNotAccepted)

	_, err = f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: offer.ID, Status: "accepted"})
	require.NoError(t, err)

	_, err = f.svc.ConfirmMoveIn(ctx, ownerID, offer.ID)
	assert.ErrorIs(t, err, offerdomain.ErrBookingNotVerified)
	assert.False(t, f.reload(t, offer.ID).TenantMoveInConfirmed)

	require.NoError(t, f.repo.SetBookingVerified(ctx, f.db, offer.ID, true, f.clock.Now()))
	f.clock.Advance(time.Hour)

	confirmed, err := f.svc.ConfirmMoveIn(ctx, ownerID, offer.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.TenantMoveInConfirmed)
	require.NotNil(t, confirmed.TenantMoveInConfirmedAt)
	stamped := *confirmed.TenantMoveInConfirmedAt
	assert.Equal(t, f.clock.Now(), stamped)

	f.clock.Advance(time.Hour)
	again, err := f.svc.ConfirmMoveIn(ctx, ownerID, offer.ID)
	require.NoError(t, err)
	assert.True(t, again.TenantMoveInConfirmedAt.Equal(stamped))
}

func TestConfirmMoveInRequiresAcceptedEvenWhenVerified(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	offer := f.createOffer(t)
	ctx := context.Background()
	require.NoError(t, f.repo.SetBookingVerified(ctx, f.db, offer.ID, true, f.clock.Now()))

	_, err := f.svc.ConfirmMoveIn(ctx, ownerID, offer.ID)
	assert.ErrorIs(t, err, offerdomain.ErrNotAccepted)

	_, err = f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: offer.ID, Status: "on_hold"})
	require.NoError(t, err)
	_, err = f.svc.ConfirmMoveIn(ctx, ownerID, offer.ID)
	assert.ErrorIs(t, err, offerdomain.ErrNotAccepted)

	stored := f.reload(t, offer.ID)
	assert.True(t, stored.BookingVerified)
	assert.False(t, stored.TenantMoveInConfirmed)
	assert.Nil(t, stored.TenantMoveInConfirmedAt)
}

func TestRequestAdvanceSyncsLinkedTransaction(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	offer := f.createOffer(t)
	ctx := context.Background()

	_, err := f.svc.RequestAdvance(ctx, offerdomain.RequestAdvanceRequest{OwnerID: ownerID, OfferID: offer.ID, Amount: "5000"})
	require.NoError(t, err)
	assert.Empty(t, f.payments.synced)

	require.NoError(t, f.repo.LinkPaymentTransaction(ctx, f.db, offer.ID, 777, f.clock.Now()))
	_, err = f.svc.RequestAdvance(ctx, offerdomain.RequestAdvanceRequest{OwnerID: ownerID, OfferID: offer.ID, Amount: "8000.50"})
	require.NoError(t, err)
	require.Len(t, f.payments.synced, 1)
	assert.True(t, decimal.RequireFromString("8000.50").Equal(f.payments.synced[0]))
}

func TestMutationRetriesFromScratch(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	offer := f.createOffer(t)
	ctx := context.Background()

	failures := 1
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:lock_audit_once", func(tx *gorm.DB) {
		if tx.Statement.Table == "audit_logs" && failures > 0 {
			failures--
			_ = tx.AddError(errors.New("database is locked"))
		}
	}))

	updated, err := f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: offer.ID, Status: "on_hold"})
	require.NoError(t, err)
	assert.Zero(t, failures)
	assert.Equal(t, offerdomain.StatusOnHold, updated.Status)
	assert.Equal(t, int64(2), updated.Version)

	stored := f.reload(t, offer.ID)
	assert.Equal(t, int64(2), stored.Version)

	logs, err := f.audit.ListForTarget(ctx, auditdomain.TargetTypeOffer, offer.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestStaleVersionConflicts(t *testing.T) {
	f := newFixture(t, config.DefaultNegotiationPolicy())
	offer := f.createOffer(t)
	ctx := context.Background()

	stale := f.reload(t, offer.ID)
	_, err := f.svc.SetStatus(ctx, offerdomain.SetStatusRequest{OwnerID: ownerID, OfferID: offer.ID, Status: "rejected"})
	require.NoError(t, err)

	stale.Status = offerdomain.StatusAccepted
	err = f.repo.Update(ctx, f.db, &stale)
	assert.ErrorIs(t, err, offerdomain.ErrConflict)
	assert.Equal(t, offerdomain.StatusRejected, f.reload(t, offer.ID).Status)
}
