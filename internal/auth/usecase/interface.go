// Package usecase defines business logic interfaces for token operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/healthtracker/backend/internal/auth/domain"
)

// RevocationRepository defines persistence operations for revoked token
// fingerprints. Implementations must support transaction-aware operations via
// context propagation.
type RevocationRepository interface {
	// Insert stores a revocation record. Inserting the same fingerprint
	// twice is not an error; the first record wins.
	Insert(ctx context.Context, record *authDomain.RevocationRecord) error

	// Contains reports whether a fingerprint is present in the store.
	Contains(ctx context.Context, fingerprint string) (bool, error)

	// DeleteExpired removes records whose underlying tokens expired before
	// the given time and returns how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)

	// CountExpired returns how many records DeleteExpired would remove.
	CountExpired(ctx context.Context, before time.Time) (int64, error)
}

// TokenUseCase defines business logic operations for the token lifecycle.
type TokenUseCase interface {
	// Mint creates a fresh access/refresh token pair for a user.
	Mint(ctx context.Context, userID uuid.UUID) (*authDomain.TokenPair, error)

	// Validate checks a token end to end: signature, standard claims, token
	// kind, and revocation. Returns the verified claims on success, or one
	// of the rejection sentinels from the auth domain package.
	//
	// The revocation check fails closed: if the store cannot be consulted,
	// the token is rejected with ErrRevocationUnavailable.
	Validate(ctx context.Context, token string, kind authDomain.TokenKind) (*authDomain.Claims, error)

	// Revoke marks a token as revoked so later validations reject it.
	// Revoking a token that is already revoked or already expired succeeds.
	Revoke(ctx context.Context, token, reason, originAddress string) error

	// SweepExpired purges revocation records for tokens that have expired on
	// their own and returns the number removed.
	SweepExpired(ctx context.Context) (int64, error)

	// CountSweepable returns how many records SweepExpired would purge.
	CountSweepable(ctx context.Context) (int64, error)
}
