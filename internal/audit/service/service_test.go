package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/rentora/internal/audit/domain"
	"github.com/smallbiznis/rentora/internal/audit/repository"
	"github.com/smallbiznis/rentora/internal/clock"
	obscontext "github.com/smallbiznis/rentora/internal/observability/context"
	"github.com/smallbiznis/rentora/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) auditdomain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func TestRecordStoresRequestScopedFields(t *testing.T) {
	svc := newTestService(t)
	ctx := obscontext.WithRequestID(context.Background(), "req-7")
	ctx = obscontext.WithCorrelationID(ctx, "01HZX")

	err := svc.Record(ctx, nil, auditdomain.Entry{
		ActorID:    5,
		Action:     "offer.status_changed",
		TargetType: auditdomain.TargetTypeOffer,
		TargetID:   100,
		Metadata:   map[string]any{"from": "pending", "to": "accepted", "": "dropped"},
	})
	require.NoError(t, err)

	logs, err := svc.ListForTarget(context.Background(), auditdomain.TargetTypeOffer, 100)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "req-7", entry.RequestID)
	assert.Equal(t, snowflake.ID(5), entry.ActorID)
	assert.Equal(t, "accepted", entry.Metadata["to"])
	assert.Equal(t, "01HZX", entry.Metadata["correlation_id"])
	assert.NotContains(t, entry.Metadata, "")
}

func TestRecordRejectsIncompleteEntries(t *testing.T) {
	svc := newTestService(t)

	err := svc.Record(context.Background(), nil, auditdomain.Entry{TargetType: "offer", TargetID: 1})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)

	err = svc.Record(context.Background(), nil, auditdomain.Entry{Action: "offer.created", TargetType: "offer"})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTarget)
}
