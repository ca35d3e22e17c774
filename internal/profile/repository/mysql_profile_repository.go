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

// MySQLProfileRepository handles health profile persistence for MySQL.
// Uses BINARY(16) for UUID storage; protected columns hold ciphertext.
type MySQLProfileRepository struct {
	db *sql.DB
}

// NewMySQLProfileRepository creates a new MySQLProfileRepository.
func NewMySQLProfileRepository(db *sql.DB) *MySQLProfileRepository {
	return &MySQLProfileRepository{db: db}
}

// Upsert inserts the profile, or replaces the existing one for the same user.
func (r *MySQLProfileRepository) Upsert(ctx context.Context, profile *domain.HealthProfile) error {
	querier := database.GetTx(ctx, r.db)

	id, err := profile.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal profile id")
	}

	userID, err := profile.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO health_profiles (id, user_id, date_of_birth, blood_type, medical_notes, allergies, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())
			  ON DUPLICATE KEY UPDATE
				  date_of_birth = VALUES(date_of_birth),
				  blood_type = VALUES(blood_type),
				  medical_notes = VALUES(medical_notes),
				  allergies = VALUES(allergies),
				  updated_at = NOW()`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
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
func (r *MySQLProfileRepository) GetByUserID(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.HealthProfile, error) {
	querier := database.GetTx(ctx, r.db)

	binaryUserID, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id, user_id, date_of_birth, blood_type, medical_notes, allergies, created_at, updated_at
			  FROM health_profiles WHERE user_id = ?`

	var profile domain.HealthProfile
	var binaryID, binaryOwner []byte

	err = querier.QueryRowContext(ctx, query, binaryUserID).Scan(
		&binaryID,
		&binaryOwner,
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

	if err := profile.ID.UnmarshalBinary(binaryID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal profile id")
	}
	if err := profile.UserID.UnmarshalBinary(binaryOwner); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	return &profile, nil
}
