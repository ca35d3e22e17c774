package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/healthtracker/backend/internal/auth/domain"
	"github.com/healthtracker/backend/internal/metrics"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Mint records metrics for token minting operations.
func (t *tokenUseCaseWithMetrics) Mint(
	ctx context.Context,
	userID uuid.UUID,
) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := t.next.Mint(ctx, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "token_mint", status)
	t.metrics.RecordDuration(ctx, "auth", "token_mint", time.Since(start), status)

	return pair, err
}

// Validate records metrics for token validation operations, including the
// rejection reason on failure.
func (t *tokenUseCaseWithMetrics) Validate(
	ctx context.Context,
	token string,
	kind authDomain.TokenKind,
) (*authDomain.Claims, error) {
	start := time.Now()
	claims, err := t.next.Validate(ctx, token, kind)

	status := "success"
	if err != nil {
		status = "error"
		t.metrics.RecordRejection(ctx, "auth", rejectionReason(err))
	}

	t.metrics.RecordOperation(ctx, "auth", "token_validate", status)
	t.metrics.RecordDuration(ctx, "auth", "token_validate", time.Since(start), status)

	return claims, err
}

// Revoke records metrics for token revocation operations.
func (t *tokenUseCaseWithMetrics) Revoke(ctx context.Context, token, reason, originAddress string) error {
	start := time.Now()
	err := t.next.Revoke(ctx, token, reason, originAddress)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "token_revoke", status)
	t.metrics.RecordDuration(ctx, "auth", "token_revoke", time.Since(start), status)

	return err
}

// SweepExpired records metrics for revocation sweep operations.
func (t *tokenUseCaseWithMetrics) SweepExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	removed, err := t.next.SweepExpired(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "revocation_sweep", status)
	t.metrics.RecordDuration(ctx, "auth", "revocation_sweep", time.Since(start), status)

	return removed, err
}

// CountSweepable passes through without instrumentation; it only backs the
// dry-run flag of the cleanup command.
func (t *tokenUseCaseWithMetrics) CountSweepable(ctx context.Context) (int64, error) {
	return t.next.CountSweepable(ctx)
}

// rejectionReason maps a validation error to a low-cardinality metric label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, authDomain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, authDomain.ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, authDomain.ErrSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, authDomain.ErrIssuerMismatch):
		return "issuer_mismatch"
	case errors.Is(err, authDomain.ErrAudienceMismatch):
		return "audience_mismatch"
	case errors.Is(err, authDomain.ErrKindMismatch):
		return "kind_mismatch"
	case errors.Is(err, authDomain.ErrRevocationUnavailable):
		return "store_unavailable"
	default:
		return "malformed"
	}
}
