// Package service implements token minting, verification, and rate limiting.
package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/healthtracker/backend/internal/auth/domain"
	apperrors "github.com/healthtracker/backend/internal/errors"
)

// tokenClaims is the wire form of a token: registered JWT claims plus the
// token kind, so access and refresh tokens are not interchangeable.
type tokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// JWTService mints and verifies HMAC-SHA256 signed tokens.
//
// Verification here covers signature and claims only. Revocation is the
// usecase layer's concern: a token this service accepts may still be refused
// because it has been revoked.
type JWTService struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTService creates a JWTService with the given signing secret, expected
// issuer/audience, and token lifetimes.
func NewJWTService(secret, issuer, audience string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// MintPair mints a fresh access/refresh token pair for a user.
func (s *JWTService) MintPair(userID uuid.UUID) (*domain.TokenPair, error) {
	now := s.now()

	accessToken, accessExpires, err := s.mint(userID, domain.TokenKindAccess, now, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExpires, err := s.mint(userID, domain.TokenKindRefresh, now, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpires,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExpires,
	}, nil
}

// mint signs a single token of the given kind.
func (s *JWTService) mint(
	userID uuid.UUID,
	kind domain.TokenKind,
	now time.Time,
	ttl time.Duration,
) (string, time.Time, error) {
	expiresAt := now.Add(ttl)

	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: string(kind),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, "failed to sign token")
	}

	return signed, expiresAt, nil
}

// Parse verifies a token's signature and claims and returns its content.
// Rejections are reported as the domain sentinel matching the first failed
// check, each of which unwraps to ErrUnauthorized.
func (s *JWTService) Parse(tokenString string) (*domain.Claims, error) {
	var claims tokenClaims

	_, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, mapParseError(err)
	}

	kind := domain.TokenKind(claims.TokenType)
	if !kind.Valid() {
		return nil, domain.ErrTokenMalformed
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrTokenMalformed
	}

	out := &domain.Claims{
		UserID:   userID,
		Kind:     kind,
		Issuer:   claims.Issuer,
		Audience: s.audience,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}

// mapParseError translates golang-jwt parse failures into domain sentinels.
func mapParseError(err error) error {
	switch {
	case apperrors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case apperrors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrSignatureInvalid
	case apperrors.Is(err, jwt.ErrTokenInvalidIssuer):
		return domain.ErrIssuerMismatch
	case apperrors.Is(err, jwt.ErrTokenInvalidAudience):
		return domain.ErrAudienceMismatch
	default:
		return domain.ErrTokenMalformed
	}
}
