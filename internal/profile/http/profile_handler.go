// Package http provides HTTP handlers for health profile operations.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/healthtracker/backend/internal/auth/http"
	apperrors "github.com/healthtracker/backend/internal/errors"
	"github.com/healthtracker/backend/internal/httputil"
	"github.com/healthtracker/backend/internal/profile/domain"
	profileUseCase "github.com/healthtracker/backend/internal/profile/usecase"
)

// ProfileHandler handles HTTP requests for health profile operations.
// All routes require authentication; the profile is always the caller's own.
type ProfileHandler struct {
	profileUseCase profileUseCase.UseCase
	logger         *slog.Logger
}

// NewProfileHandler creates a new profile handler with required dependencies.
func NewProfileHandler(profileUseCase profileUseCase.UseCase, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
		logger:         logger,
	}
}

// ProfileResponse represents a health profile in API responses, with the
// protected fields decrypted for the owning user.
type ProfileResponse struct {
	ID           string    `json:"id"`
	DateOfBirth  string    `json:"date_of_birth,omitempty"`
	BloodType    string    `json:"blood_type,omitempty"`
	MedicalNotes string    `json:"medical_notes,omitempty"`
	Allergies    string    `json:"allergies,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// mapProfileToResponse converts a domain profile to an API response.
func mapProfileToResponse(profile *domain.HealthProfile) ProfileResponse {
	return ProfileResponse{
		ID:           profile.ID.String(),
		DateOfBirth:  profile.DateOfBirth,
		BloodType:    profile.BloodType,
		MedicalNotes: profile.MedicalNotes,
		Allergies:    profile.Allergies,
		CreatedAt:    profile.CreatedAt,
		UpdatedAt:    profile.UpdatedAt,
	}
}

// UpsertProfileHandler creates or replaces the caller's health profile.
// PUT /v1/profile - Requires authentication.
// Returns 200 OK with the stored profile (protected fields in plaintext for the owner).
func (h *ProfileHandler) UpsertProfileHandler(c *gin.Context) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var input profileUseCase.UpsertProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	profile, err := h.profileUseCase.Upsert(c.Request.Context(), userID, input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, mapProfileToResponse(profile))
}

// GetProfileHandler retrieves the caller's health profile.
// GET /v1/profile - Requires authentication.
// Returns 200 OK with the profile, or 404 when none exists yet.
func (h *ProfileHandler) GetProfileHandler(c *gin.Context) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	profile, err := h.profileUseCase.Get(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, mapProfileToResponse(profile))
}
