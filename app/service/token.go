package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/dto"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/entity"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/security"
	"github.com/vibast-solutions/ms-go-mentor-auth/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TokenUse string

const (
	TokenUseAccess  TokenUse = "access"
	TokenUseRefresh TokenUse = "refresh"
)

type Claims struct {
	Kind entity.AccountKind `json:"kind"`
	Use  TokenUse           `json:"use"`
	jwt.RegisteredClaims
}

func (c *Claims) AccountID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

type sessionStore interface {
	SetRefreshToken(ctx context.Context, kind entity.AccountKind, id uint64, token string, now time.Time) (bool, error)
	SwapRefreshToken(ctx context.Context, kind entity.AccountKind, id uint64, current, next string, now time.Time) (bool, error)
	ClearRefreshToken(ctx context.Context, kind entity.AccountKind, id uint64, now time.Time) (bool, error)
}

// TokenService issues, verifies and rotates RS256 token pairs. The refresh value of the
// latest pair is kept on the account row, so issuing a pair revokes the previous one.
type TokenService struct {
	keys       *security.KeyPair
	sessions   sessionStore
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type TokenServiceOption func(*TokenService)

func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewTokenService(keys *security.KeyPair, sessions sessionStore, cfg config.JWTConfig, opts ...TokenServiceOption) *TokenService {
	svc := &TokenService{
		keys:       keys,
		sessions:   sessions,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// Issue signs a new pair and stores its refresh value before returning it.
func (s *TokenService) Issue(ctx context.Context, id uint64, kind entity.AccountKind) (*dto.TokenPair, error) {
	now := s.now()
	pair, err := s.sign(id, kind, now)
	if err != nil {
		return nil, err
	}

	stored, err := s.sessions.SetRefreshToken(ctx, kind, id, pair.RefreshToken, now)
	if err != nil {
		return nil, persistenceError(err)
	}
	if !stored {
		return nil, ErrNotFound
	}
	return pair, nil
}

// VerifyAccess checks signature, expiry and shape of an access token. It never reads the store.
func (s *TokenService) VerifyAccess(tokenString string) (*Claims, error) {
	return s.parse(tokenString, TokenUseAccess)
}

// Rotate exchanges a refresh token for a new pair. Only the value currently stored for the
// account is accepted, and only once.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	claims, err := s.parse(refreshToken, TokenUseRefresh)
	if err != nil {
		return nil, err
	}
	id, _ := claims.AccountID()

	now := s.now()
	pair, err := s.sign(id, claims.Kind, now)
	if err != nil {
		return nil, err
	}

	swapped, err := s.sessions.SwapRefreshToken(ctx, claims.Kind, id, refreshToken, pair.RefreshToken, now)
	if err != nil {
		return nil, persistenceError(err)
	}
	if !swapped {
		logrus.WithFields(logrus.Fields{
			"account_id":   id,
			"account_kind": claims.Kind,
			"jti":          claims.ID,
		}).Warn("superseded refresh token presented")
		return nil, ErrRevoked
	}
	return pair, nil
}

// Revoke clears the stored refresh value so no outstanding refresh token rotates.
// Access tokens stay valid until they expire.
func (s *TokenService) Revoke(ctx context.Context, id uint64, kind entity.AccountKind) error {
	cleared, err := s.sessions.ClearRefreshToken(ctx, kind, id, s.now())
	if err != nil {
		return persistenceError(err)
	}
	if !cleared {
		return ErrNotFound
	}
	return nil
}

func (s *TokenService) sign(id uint64, kind entity.AccountKind, now time.Time) (*dto.TokenPair, error) {
	if s.keys == nil || s.keys.Private == nil {
		return nil, ErrSigningKeyUnavailable
	}
	if _, err := entity.ParseAccountKind(string(kind)); err != nil {
		return nil, err
	}

	subject := strconv.FormatUint(id, 10)
	access := &Claims{
		Kind: kind,
		Use:  TokenUseAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	refresh := &Claims{
		Kind: kind,
		Use:  TokenUseRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, access).SignedString(s.keys.Private)
	if err != nil {
		return nil, err
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, refresh).SignedString(s.keys.Private)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresIn:  int64(s.accessTTL.Seconds()),
		RefreshExpiresIn: int64(s.refreshTTL.Seconds()),
	}, nil
}

func (s *TokenService) parse(tokenString string, use TokenUse) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.keys.Public, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}

	// A token is dead from the exp instant on, whatever leeway the parser applies.
	if !s.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrExpired
	}
	if claims.Use != use {
		return nil, ErrMalformed
	}
	if kind, kindErr := entity.ParseAccountKind(string(claims.Kind)); kindErr != nil || kind != claims.Kind {
		return nil, ErrMalformed
	}
	if _, err = claims.AccountID(); err != nil {
		return nil, ErrMalformed
	}
	return claims, nil
}
