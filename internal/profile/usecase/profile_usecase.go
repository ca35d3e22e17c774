// Package usecase implements health profile business logic, including
// transparent encryption of protected fields.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/healthtracker/backend/internal/errors"
	"github.com/healthtracker/backend/internal/profile/domain"
	appValidation "github.com/healthtracker/backend/internal/validation"
)

// UpsertProfileInput contains the profile fields a user may set.
type UpsertProfileInput struct {
	DateOfBirth  string `json:"date_of_birth"`
	BloodType    string `json:"blood_type"`
	MedicalNotes string `json:"medical_notes"`
	Allergies    string `json:"allergies"`
}

// UseCase defines the interface for health profile operations.
type UseCase interface {
	// Upsert creates or replaces the calling user's health profile.
	Upsert(ctx context.Context, userID uuid.UUID, input UpsertProfileInput) (*domain.HealthProfile, error)

	// Get retrieves the user's health profile with protected fields decrypted.
	Get(ctx context.Context, userID uuid.UUID) (*domain.HealthProfile, error)
}

// ProfileRepository defines persistence operations for health profiles. The
// profiles it sees carry ciphertext in the protected fields.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.HealthProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.HealthProfile, error)
}

// FieldCipher encrypts and decrypts individual protected field values.
type FieldCipher interface {
	EncryptField(plaintext string) (string, error)
	DecryptField(stored string) (string, error)
}

// ProfileUseCase handles health profile business logic.
type ProfileUseCase struct {
	profileRepo ProfileRepository
	fieldCipher FieldCipher
}

// NewProfileUseCase creates a new ProfileUseCase.
func NewProfileUseCase(profileRepo ProfileRepository, fieldCipher FieldCipher) UseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		fieldCipher: fieldCipher,
	}
}

// validateUpsertProfileInput validates the profile input.
func validateUpsertProfileInput(input UpsertProfileInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.DateOfBirth,
			validation.Date(time.DateOnly).Error("date_of_birth must be YYYY-MM-DD"),
		),
		validation.Field(&input.BloodType,
			validation.In("A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-").
				Error("blood_type must be a valid ABO/Rh group"),
		),
		validation.Field(&input.MedicalNotes,
			validation.Length(0, 10000).Error("medical_notes must be at most 10000 characters"),
		),
		validation.Field(&input.Allergies,
			validation.Length(0, 2000).Error("allergies must be at most 2000 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Upsert creates or replaces the user's health profile. Protected fields are
// encrypted before the profile is handed to the repository; the returned
// profile carries the original plaintext.
func (uc *ProfileUseCase) Upsert(
	ctx context.Context,
	userID uuid.UUID,
	input UpsertProfileInput,
) (*domain.HealthProfile, error) {
	if err := validateUpsertProfileInput(input); err != nil {
		return nil, err
	}

	stored := &domain.HealthProfile{
		ID:     uuid.Must(uuid.NewV7()),
		UserID: userID,
	}

	var err error
	if stored.DateOfBirth, err = uc.fieldCipher.EncryptField(input.DateOfBirth); err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt date of birth")
	}
	if stored.BloodType, err = uc.fieldCipher.EncryptField(input.BloodType); err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt blood type")
	}
	if stored.MedicalNotes, err = uc.fieldCipher.EncryptField(input.MedicalNotes); err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt medical notes")
	}
	if stored.Allergies, err = uc.fieldCipher.EncryptField(input.Allergies); err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt allergies")
	}

	if err := uc.profileRepo.Upsert(ctx, stored); err != nil {
		return nil, err
	}

	return &domain.HealthProfile{
		ID:           stored.ID,
		UserID:       userID,
		DateOfBirth:  input.DateOfBirth,
		BloodType:    input.BloodType,
		MedicalNotes: input.MedicalNotes,
		Allergies:    input.Allergies,
		CreatedAt:    stored.CreatedAt,
		UpdatedAt:    stored.UpdatedAt,
	}, nil
}

// Get retrieves the user's health profile with protected fields decrypted.
func (uc *ProfileUseCase) Get(ctx context.Context, userID uuid.UUID) (*domain.HealthProfile, error) {
	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile.DateOfBirth, err = uc.fieldCipher.DecryptField(profile.DateOfBirth); err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt date of birth")
	}
	if profile.BloodType, err = uc.fieldCipher.DecryptField(profile.BloodType); err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt blood type")
	}
	if profile.MedicalNotes, err = uc.fieldCipher.DecryptField(profile.MedicalNotes); err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt medical notes")
	}
	if profile.Allergies, err = uc.fieldCipher.DecryptField(profile.Allergies); err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt allergies")
	}

	return profile, nil
}
