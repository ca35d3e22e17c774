// Package usecase implements business logic orchestration for token operations.
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/healthtracker/backend/internal/auth/domain"
	authService "github.com/healthtracker/backend/internal/auth/service"
	"github.com/healthtracker/backend/internal/config"
)

// tokenUseCase implements TokenUseCase on top of the JWT service and the
// revocation store.
type tokenUseCase struct {
	config         *config.Config
	jwtService     *authService.JWTService
	revocationRepo RevocationRepository
}

// NewTokenUseCase creates a TokenUseCase.
func NewTokenUseCase(
	cfg *config.Config,
	jwtService *authService.JWTService,
	revocationRepo RevocationRepository,
) TokenUseCase {
	return &tokenUseCase{
		config:         cfg,
		jwtService:     jwtService,
		revocationRepo: revocationRepo,
	}
}

// Mint creates a fresh access/refresh token pair for a user.
func (t *tokenUseCase) Mint(ctx context.Context, userID uuid.UUID) (*authDomain.TokenPair, error) {
	return t.jwtService.MintPair(userID)
}

// Validate checks a token end to end.
//
// Checks run cheapest-first: signature and claims are pure CPU work, the
// revocation lookup hits the database. A token that fails locally never
// causes a store round trip.
//
// Security Notes:
//   - The revocation check is fail-closed. A store error or timeout rejects
//     the token with ErrRevocationUnavailable; it is never treated as "not
//     revoked". An attacker who can degrade the database must not gain the
//     ability to replay revoked tokens.
//   - The lookup is bounded by Config.RevocationCheckTimeout so a slow store
//     degrades into fast denials instead of piled-up requests.
func (t *tokenUseCase) Validate(
	ctx context.Context,
	token string,
	kind authDomain.TokenKind,
) (*authDomain.Claims, error) {
	claims, err := t.jwtService.Parse(token)
	if err != nil {
		return nil, err
	}

	if claims.Kind != kind {
		return nil, authDomain.ErrKindMismatch
	}

	ctx, cancel := context.WithTimeout(ctx, t.config.RevocationCheckTimeout)
	defer cancel()

	revoked, err := t.revocationRepo.Contains(ctx, authDomain.Fingerprint(token))
	if err != nil {
		return nil, authDomain.ErrRevocationUnavailable
	}
	if revoked {
		return nil, authDomain.ErrTokenRevoked
	}

	return claims, nil
}

// Revoke marks a token as revoked.
//
// The token must carry a valid signature: accepting arbitrary strings would
// let anyone fill the revocation table. An already-expired token is a no-op
// success, since it can no longer be used anyway. The record inherits the
// token's own expiry so the sweep can drop it once the token would have died
// naturally.
func (t *tokenUseCase) Revoke(ctx context.Context, token, reason, originAddress string) error {
	claims, err := t.jwtService.Parse(token)
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenExpired) {
			return nil
		}
		return err
	}

	record := &authDomain.RevocationRecord{
		ID:            uuid.Must(uuid.NewV7()),
		Fingerprint:   authDomain.Fingerprint(token),
		OwnerID:       claims.UserID,
		ExpiresAt:     claims.ExpiresAt.UTC(),
		RevokedAt:     time.Now().UTC(),
		Reason:        reason,
		OriginAddress: originAddress,
	}

	return t.revocationRepo.Insert(ctx, record)
}

// SweepExpired purges revocation records whose tokens have expired on their own.
func (t *tokenUseCase) SweepExpired(ctx context.Context) (int64, error) {
	return t.revocationRepo.DeleteExpired(ctx, time.Now().UTC())
}

// CountSweepable returns how many records SweepExpired would purge.
func (t *tokenUseCase) CountSweepable(ctx context.Context) (int64, error) {
	return t.revocationRepo.CountExpired(ctx, time.Now().UTC())
}
