package repository

import (
	"context"
	"database/sql"
	"time"

	authDomain "github.com/healthtracker/backend/internal/auth/domain"
	"github.com/healthtracker/backend/internal/database"
	apperrors "github.com/healthtracker/backend/internal/errors"
)

// MySQLRevocationRepository implements RevocationRecord persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLRevocationRepository struct {
	db *sql.DB
}

// NewMySQLRevocationRepository creates a new MySQL revocation repository.
func NewMySQLRevocationRepository(db *sql.DB) *MySQLRevocationRepository {
	return &MySQLRevocationRepository{db: db}
}

// Insert stores a revocation record. INSERT IGNORE keeps re-insertion of an
// existing fingerprint a no-op so revocation stays idempotent.
func (m *MySQLRevocationRepository) Insert(
	ctx context.Context,
	record *authDomain.RevocationRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}

	ownerID, err := record.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `INSERT IGNORE INTO revoked_tokens (id, fingerprint, owner_id, expires_at, revoked_at, reason, origin_address)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		record.Fingerprint,
		ownerID,
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
func (m *MySQLRevocationRepository) Contains(ctx context.Context, fingerprint string) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE fingerprint = ?)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, fingerprint).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check revocation record")
	}

	return exists, nil
}

// DeleteExpired removes records whose tokens expired before the given time.
func (m *MySQLRevocationRepository) DeleteExpired(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM revoked_tokens WHERE expires_at < ?`

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
func (m *MySQLRevocationRepository) CountExpired(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM revoked_tokens WHERE expires_at < ?`

	var count int64
	if err := querier.QueryRowContext(ctx, query, before).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired revocation records")
	}

	return count, nil
}
