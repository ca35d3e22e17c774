// Package repository implements persistence for revoked token fingerprints.
package repository

import (
	"context"
	"database/sql"
	"time"

	authDomain "github.com/healthtracker/backend/internal/auth/domain"
	"github.com/healthtracker/backend/internal/database"
	apperrors "github.com/healthtracker/backend/internal/errors"
)

// PostgreSQLRevocationRepository implements RevocationRecord persistence for
// PostgreSQL. Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLRevocationRepository struct {
	db *sql.DB
}

// NewPostgreSQLRevocationRepository creates a new PostgreSQL revocation repository.
func NewPostgreSQLRevocationRepository(db *sql.DB) *PostgreSQLRevocationRepository {
	return &PostgreSQLRevocationRepository{db: db}
}

// Insert stores a revocation record. Re-inserting an existing fingerprint is
// a no-op so revocation stays idempotent under concurrent logouts.
func (p *PostgreSQLRevocationRepository) Insert(
	ctx context.Context,
	record *authDomain.RevocationRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO revoked_tokens (id, fingerprint, owner_id, expires_at, revoked_at, reason, origin_address)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (fingerprint) DO NOTHING`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.Fingerprint,
		record.OwnerID,
		record.ExpiresAt,
		record.RevokedAt,
		record.Reason,
		record.OriginAddress,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert revocation record")
	}
	return nil
}

// Contains reports whether a fingerprint is present in the store.
func (p *PostgreSQLRevocationRepository) Contains(ctx context.Context, fingerprint string) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE fingerprint = $1)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, fingerprint).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check revocation record")
	}

	return exists, nil
}

// DeleteExpired removes records whose tokens expired before the given time.
func (p *PostgreSQLRevocationRepository) DeleteExpired(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM revoked_tokens WHERE expires_at < $1`

	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired revocation records")
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted revocation records")
	}

	return removed, nil
}

// CountExpired returns how many records DeleteExpired would remove.
func (p *PostgreSQLRevocationRepository) CountExpired(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM revoked_tokens WHERE expires_at < $1`

	var count int64
	if err := querier.QueryRowContext(ctx, query, before).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired revocation records")
	}

	return count, nil
}
