package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/rentora/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observeGlobal(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestWithContextAddsRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithActorID(ctx, "77")

	WithContext(ctx, zap.New(core)).Info("offer created")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "77", fields["actor_id"])
}

func TestGinMiddlewareLogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observeGlobal(t, zapcore.DebugLevel)

	engine := gin.New()
	engine.Use(GinMiddleware(MiddlewareConfig{ErrorClassifier: func(error) string { return "validation" }}))
	engine.PATCH("/offers/:offerId/status", func(c *gin.Context) {
		_ = c.Error(errors.New("invalid_status"))
		c.Status(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodPatch, "/offers/9/status", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, "given-id", rec.Header().Get(RequestIDHeader))
	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/offers/:offerId/status", fields["route"])
	assert.Equal(t, int64(http.StatusBadRequest), fields["status"])
	assert.Equal(t, "validation", fields["error_type"])
	assert.Equal(t, "given-id", fields["request_id"])
}

func TestGormLoggerTrace(t *testing.T) {
	logs := observeGlobal(t, zapcore.DebugLevel)
	l := NewGormLogger(DefaultGormLoggerConfig())

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `UPDATE "offers" SET "status"=$1 WHERE id = $2 AND version = $3`, 0
	}, errors.New("boom"))
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM offers", 1
	}, gormlogger.ErrRecordNotFound)

	entries := logs.FilterMessage("db.query").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "UPDATE", fields["operation"])
	assert.Equal(t, "offers", fields["table"])
	assert.Equal(t, int64(0), fields["rows_affected"])
}

func TestSQLHelpers(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.Equal(t, "UNKNOWN", operationFromSQL("  "))
	assert.Equal(t, "payment_transactions", tableFromSQL("INSERT INTO `payment_transactions` (`id`) VALUES (?)"))
	assert.Equal(t, "rent_month_records", tableFromSQL(`SELECT count(*) FROM "rent_month_records" WHERE offer_id = $1`))
	assert.Equal(t, "", tableFromSQL("BEGIN"))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(nil, Config{Level: "loud"})
	assert.Error(t, err)
}
