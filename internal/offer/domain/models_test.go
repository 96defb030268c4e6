package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		err  error
	}{
		{in: "pending", want: StatusPending},
		{in: " Accepted ", want: StatusAccepted},
		{in: "REJECTED", want: StatusRejected},
		{in: "on_hold", want: StatusOnHold},
		{in: "on-hold", err: ErrInvalidStatus},
		{in: "", err: ErrInvalidStatus},
	}
	for _, tc := range tests {
		got, err := ParseStatus(tc.in)
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseActionType(t *testing.T) {
	got, err := ParseActionType(" advance_requested ")
	require.NoError(t, err)
	assert.Equal(t, ActionAdvanceRequested, got)

	got, err = ParseActionType("")
	require.NoError(t, err)
	assert.Equal(t, ActionNone, got)

	_, err = ParseActionType("visit_requested")
	assert.ErrorIs(t, err, ErrInvalidActionType)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2026-04-01", "2026-04-01T00:00:00", "2026-04-01T05:30:00+05:30", " 2026-04-01T00:00:00Z "} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
		assert.Equal(t, time.UTC, got.Location())
	}

	_, err := ParseDate("next tuesday")
	assert.Error(t, err)
}

func TestAdvanceExpiresAt(t *testing.T) {
	requestedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	days := 7

	offer := Offer{ActionType: ActionAdvanceRequested, AdvanceRequestedAt: &requestedAt, RequestedAdvanceValidityDays: &days}
	expires, ok := offer.AdvanceExpiresAt()
	require.True(t, ok)
	assert.Equal(t, requestedAt.AddDate(0, 0, 7), expires)

	offer.RequestedAdvanceValidityDays = nil
	_, ok = offer.AdvanceExpiresAt()
	assert.False(t, ok)

	_, ok = Offer{}.AdvanceExpiresAt()
	assert.False(t, ok)
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ErrNotAccepted))
	assert.True(t, IsValidationError(ErrValidityTooLong))
	assert.False(t, IsValidationError(ErrOfferNotFound))
	assert.False(t, IsValidationError(ErrForbidden))
	assert.False(t, IsValidationError(ErrConflict))
}
