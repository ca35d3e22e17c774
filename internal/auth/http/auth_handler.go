// Package http provides HTTP middleware and handlers for authentication.
package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/healthtracker/backend/internal/auth/domain"
	"github.com/healthtracker/backend/internal/auth/http/dto"
	authUseCase "github.com/healthtracker/backend/internal/auth/usecase"
	apperrors "github.com/healthtracker/backend/internal/errors"
	"github.com/healthtracker/backend/internal/httputil"
	userUseCase "github.com/healthtracker/backend/internal/user/usecase"
	customValidation "github.com/healthtracker/backend/internal/validation"
)

// Revocation reasons recorded by the handlers.
const (
	reasonLogout         = "logout"
	reasonRotation       = "refresh_rotation"
	reasonPasswordChange = "password_change"
)

// AuthHandler handles HTTP requests for account and session operations.
// It coordinates credential checks with the user use case and token
// issuance/revocation with the token use case.
type AuthHandler struct {
	userUseCase  userUseCase.UseCase
	tokenUseCase authUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(
	userUseCase userUseCase.UseCase,
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		userUseCase:  userUseCase,
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// RegisterHandler creates a new account.
// POST /v1/auth/register - No authentication required.
// Returns 201 Created with the new user (password hash excluded).
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := userUseCase.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}

	user, err := h.userUseCase.Register(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}

// LoginHandler authenticates a user and mints a token pair.
// POST /v1/auth/login - No authentication required (this is the authentication endpoint).
// Returns 200 OK with an access/refresh token pair.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	pair, err := h.tokenUseCase.Mint(c.Request.Context(), user.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("user logged in", slog.String("user_id", user.ID.String()))

	c.JSON(http.StatusOK, dto.MapTokenPairToResponse(pair))
}

// RefreshHandler exchanges a valid refresh token for a fresh token pair.
// POST /v1/auth/refresh - No authentication required; the refresh token is the credential.
//
// The presented refresh token is revoked before the new pair is minted, so
// each refresh token is usable at most once. If minting fails after the
// revocation the client has to log in again, which errs on the safe side.
func (h *AuthHandler) RefreshHandler(c *gin.Context) {
	var req dto.RefreshRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	claims, err := h.tokenUseCase.Validate(
		c.Request.Context(), req.RefreshToken, authDomain.TokenKindRefresh)
	if err != nil {
		logTokenRejection(h.logger, err, c.FullPath())
		httputil.HandleErrorGin(c, err, nil)
		return
	}

	if err := h.tokenUseCase.Revoke(
		c.Request.Context(), req.RefreshToken, reasonRotation, c.ClientIP()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	pair, err := h.tokenUseCase.Mint(c.Request.Context(), claims.UserID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("token pair refreshed", slog.String("user_id", claims.UserID.String()))

	c.JSON(http.StatusOK, dto.MapTokenPairToResponse(pair))
}

// LogoutHandler revokes the caller's session tokens.
// POST /v1/auth/logout - Requires authentication (access token in Authorization header).
//
// Revokes the refresh token from the request body and the access token that
// authenticated the request, so neither survives the logout.
// Returns 204 No Content.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	var req dto.LogoutRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	origin := c.ClientIP()

	if err := h.tokenUseCase.Revoke(
		c.Request.Context(), req.RefreshToken, reasonLogout, origin); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// The access token that authenticated this request goes too.
	if accessToken := bearerToken(c); accessToken != "" {
		if err := h.tokenUseCase.Revoke(
			c.Request.Context(), accessToken, reasonLogout, origin); err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
	}

	if userID, ok := GetUserID(c.Request.Context()); ok {
		h.logger.Info("user logged out", slog.String("user_id", userID.String()))
	}

	c.Status(http.StatusNoContent)
}

// ChangePasswordHandler replaces the caller's password.
// PUT /v1/auth/password - Requires authentication.
//
// The access token that authenticated the request is revoked on success, so a
// stolen token cannot keep a session alive past a password change.
// Returns 204 No Content.
func (h *AuthHandler) ChangePasswordHandler(c *gin.Context) {
	userID, ok := GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ChangePasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.userUseCase.ChangePassword(
		c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if accessToken := bearerToken(c); accessToken != "" {
		if err := h.tokenUseCase.Revoke(
			c.Request.Context(), accessToken, reasonPasswordChange, c.ClientIP()); err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
	}

	h.logger.Info("password changed", slog.String("user_id", userID.String()))

	c.Status(http.StatusNoContent)
}

// bearerToken extracts the raw Bearer token from the Authorization header.
// Returns "" when the header is missing or not a Bearer scheme.
func bearerToken(c *gin.Context) string {
	const bearerPrefix = "bearer "

	authHeader := c.GetHeader("Authorization")
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}

	return authHeader[len(bearerPrefix):]
}
