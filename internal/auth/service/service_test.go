package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	authdomain "github.com/smallbiznis/rentora/internal/auth/domain"
	"github.com/smallbiznis/rentora/internal/clock"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-secret"

func sign(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := NewVerifier(testSecret, clock.NewFakeClock(now), zaptest.NewLogger(t))
	exp := now.Add(time.Hour).Unix()

	cases := []struct {
		name    string
		header  string
		wantID  snowflake.ID
		wantErr error
	}{
		{
			name:   "numeric_sub",
			header: "Bearer " + sign(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": 42, "exp": exp}),
			wantID: 42,
		},
		{
			name:   "numeric_sub_beyond_float_precision",
			header: "Bearer " + sign(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": int64(1234567890123456789), "exp": exp}),
			wantID: 1234567890123456789,
		},
		{
			name:    "fractional_sub",
			header:  "Bearer " + sign(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": 42.5, "exp": exp}),
			wantErr: authdomain.ErrInvalidToken,
		},
		{
			name:   "string_sub_lowercase_scheme",
			header: "bearer " + sign(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1001", "exp": exp}),
			wantID: 1001,
		},
		{
			name:    "missing",
			header:  "Bearer ",
			wantErr: authdomain.ErrMissingToken,
		},
		{
			name:    "expired",
			header:  sign(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": 42, "exp": now.Add(-time.Minute).Unix()}),
			wantErr: authdomain.ErrTokenExpired,
		},
		{
			name:    "wrong_secret",
			header:  sign(t, "other", jwt.SigningMethodHS256, jwt.MapClaims{"sub": 42, "exp": exp}),
			wantErr: authdomain.ErrInvalidToken,
		},
		{
			name:    "wrong_algorithm",
			header:  sign(t, testSecret, jwt.SigningMethodHS384, jwt.MapClaims{"sub": 42, "exp": exp}),
			wantErr: authdomain.ErrInvalidToken,
		},
		{
			name:    "no_expiry",
			header:  sign(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": 42}),
			wantErr: authdomain.ErrInvalidToken,
		},
		{
			name:    "non_numeric_sub",
			header:  sign(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice", "exp": exp}),
			wantErr: authdomain.ErrInvalidToken,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			identity, err := v.Verify(context.Background(), tc.header)
			if tc.wantErr != nil {
				if err != tc.wantErr {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if identity.UserID != tc.wantID {
				t.Fatalf("expected user %d, got %d", tc.wantID, identity.UserID)
			}
		})
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	ctx := authdomain.ContextWithIdentity(context.Background(), authdomain.Identity{UserID: 9})
	identity, ok := authdomain.IdentityFromContext(ctx)
	if !ok || identity.UserID != 9 {
		t.Fatalf("expected identity 9, got %+v (ok=%v)", identity, ok)
	}

	if _, ok := authdomain.IdentityFromContext(context.Background()); ok {
		t.Fatalf("expected no identity on empty context")
	}
}
