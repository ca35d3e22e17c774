// Package domain defines the health profile entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthtracker/backend/internal/errors"
)

// HealthProfile holds a user's health record. DateOfBirth, BloodType,
// MedicalNotes, and Allergies are protected fields: they are encrypted before
// they reach the repository and decrypted after they leave it, so the
// database only ever sees ciphertext for them.
type HealthProfile struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	DateOfBirth  string
	BloodType    string
	MedicalNotes string
	Allergies    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Domain-specific errors for health profile operations.
var (
	// ErrProfileNotFound indicates no profile exists for the user.
	ErrProfileNotFound = errors.Wrap(errors.ErrNotFound, "health profile not found")

	// ErrProfileAlreadyExists indicates the user already has a profile.
	ErrProfileAlreadyExists = errors.Wrap(errors.ErrConflict, "health profile already exists")
)
