// Package repository provides data persistence implementations for health profiles.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/healthtracker/backend/internal/database"
	apperrors "github.com/healthtracker/backend/internal/errors"
	"github.com/healthtracker/backend/internal/profile/domain"
)

// PostgreSQLProfileRepository handles health profile persistence for PostgreSQL.
// Protected columns hold ciphertext; this layer treats them as opaque strings.
type PostgreSQLProfileRepository struct {
	db *sql.DB
}

// NewPostgreSQLProfileRepository creates a new PostgreSQLProfileRepository.
func NewPostgreSQLProfileRepository(db *sql.DB) *PostgreSQLProfileRepository {
	return &PostgreSQLProfileRepository{db: db}
}

// Upsert inserts the profile, or replaces the existing one for the same user.
func (r *PostgreSQLProfileRepository) Upsert(ctx context.Context, profile *domain.HealthProfile) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO health_profiles (id, user_id, date_of_birth, blood_type, medical_notes, allergies, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			  ON CONFLICT (user_id) DO UPDATE
			  SET date_of_birth = EXCLUDED.date_of_birth,
				  blood_type = EXCLUDED.blood_type,
				  medical_notes = EXCLUDED.medical_notes,
				  allergies = EXCLUDED.allergies,
				  updated_at = NOW()`

	_, err := querier.ExecContext(
		ctx,
		query,
		profile.ID,
		profile.UserID,
		profile.DateOfBirth,
		profile.BloodType,
		profile.MedicalNotes,
		profile.Allergies,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert health profile")
	}
	return nil
}

// GetByUserID retrieves a user's health profile.
func (r *PostgreSQLProfileRepository) GetByUserID(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.HealthProfile, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, date_of_birth, blood_type, medical_notes, allergies, created_at, updated_at
			  FROM health_profiles WHERE user_id = $1`

	var profile domain.HealthProfile

	err := querier.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.DateOfBirth,
		&profile.BloodType,
		&profile.MedicalNotes,
		&profile.Allergies,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get health profile")
	}

	return &profile, nil
}
