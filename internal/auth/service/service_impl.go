package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	authdomain "github.com/smallbiznis/rentora/internal/auth/domain"
	"github.com/smallbiznis/rentora/internal/clock"
	"github.com/smallbiznis/rentora/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	Clock clock.Clock
}

type verifier struct {
	secret []byte
	log    *zap.Logger
	parser *jwt.Parser
}

func New(p Params) (authdomain.Verifier, error) {
	secret := strings.TrimSpace(p.Cfg.AuthJWTSecret)
	if secret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}
	return NewVerifier(secret, p.Clock, p.Log), nil
}

func NewVerifier(secret string, c clock.Clock, log *zap.Logger) authdomain.Verifier {
	if c == nil {
		c = clock.SystemClock{}
	}
	return &verifier{
		secret: []byte(secret),
		log:    log.Named("auth.verifier"),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(c.Now),
			jwt.WithExpirationRequired(),
			jwt.WithJSONNumber(),
		),
	}
}

func (v *verifier) Verify(ctx context.Context, header string) (authdomain.Identity, error) {
	raw := strings.TrimSpace(header)
	if len(raw) >= 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	} else if strings.EqualFold(raw, "bearer") {
		raw = ""
	}
	if raw == "" {
		return authdomain.Identity{}, authdomain.ErrMissingToken
	}

	claims := jwt.MapClaims{}
	tok, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return authdomain.Identity{}, authdomain.ErrTokenExpired
		}
		v.log.Debug("token rejected", zap.Error(err))
		return authdomain.Identity{}, authdomain.ErrInvalidToken
	}
	if !tok.Valid {
		return authdomain.Identity{}, authdomain.ErrInvalidToken
	}

	userID, err := subjectID(claims["sub"])
	if err != nil {
		v.log.Debug("token subject rejected", zap.Error(err))
		return authdomain.Identity{}, authdomain.ErrInvalidToken
	}

	return authdomain.Identity{UserID: userID}, nil
}

// subjectID accepts sub as a decimal string or a JSON number.
func subjectID(sub interface{}) (snowflake.ID, error) {
	var id int64
	switch v := sub.(type) {
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse sub %q: %w", v, err)
		}
		id = parsed
	case json.Number:
		// decoded without a float64 step, so 19-digit ids stay exact
		parsed, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("sub %s is not an integer id: %w", v, err)
		}
		id = parsed
	default:
		return 0, fmt.Errorf("unsupported sub type %T", sub)
	}
	if id <= 0 {
		return 0, errors.New("sub must be positive")
	}
	return snowflake.ID(id), nil
}
