package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/healthtracker/backend/internal/auth/domain"
	userDomain "github.com/healthtracker/backend/internal/user/domain"
	userUseCase "github.com/healthtracker/backend/internal/user/usecase"
)

// createAuthRouter builds a router with the auth handler routes registered the
// way the server does, including the authentication middleware on logout.
func createAuthRouter(handler *AuthHandler, tokenUC *mockTokenUseCase) *gin.Engine {
	router := gin.New()
	router.POST("/v1/auth/register", handler.RegisterHandler)
	router.POST("/v1/auth/login", handler.LoginHandler)
	router.POST("/v1/auth/refresh", handler.RefreshHandler)
	router.POST("/v1/auth/logout",
		AuthenticationMiddleware(tokenUC, createTestLogger()), handler.LogoutHandler)
	router.PUT("/v1/auth/password",
		AuthenticationMiddleware(tokenUC, createTestLogger()), handler.ChangePasswordHandler)
	return router
}

// testTokenPair builds a minted pair with realistic expirations.
func testTokenPair() *authDomain.TokenPair {
	now := time.Now().UTC()
	return &authDomain.TokenPair{
		AccessToken:           "access.jwt.token",
		AccessTokenExpiresAt:  now.Add(30 * time.Minute),
		RefreshToken:          "refresh.jwt.token",
		RefreshTokenExpiresAt: now.Add(720 * time.Hour),
	}
}

// doJSON performs a JSON request against the router.
func doJSON(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

// postJSON performs a JSON POST against the router.
func postJSON(router *gin.Engine, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	return doJSON(router, http.MethodPost, path, body, headers)
}

// TestRegisterHandler_Success tests account creation with valid input.
func TestRegisterHandler_Success(t *testing.T) {
	mockUserUC := &mockUserUseCase{}
	mockTokenUC := &mockTokenUseCase{}
	handler := NewAuthHandler(mockUserUC, mockTokenUC, createTestLogger())

	userID := uuid.Must(uuid.NewV7())
	user := &userDomain.User{
		ID:        userID,
		Name:      "Alice Example",
		Email:     "alice@example.com",
		CreatedAt: time.Now().UTC(),
	}

	mockUserUC.On("Register", mock.Anything, userUseCase.RegisterUserInput{
		Name:     "Alice Example",
		Email:    "alice@example.com",
		Password: "Sup3rSecret",
	}).Return(user, nil).Once()

	router := createAuthRouter(handler, mockTokenUC)
	w := postJSON(router, "/v1/auth/register", map[string]string{
		"name":     "Alice Example",
		"email":    "alice@example.com",
		"password": "Sup3rSecret",
	}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), response["id"])
	assert.Equal(t, "alice@example.com", response["email"])
	assert.NotContains(t, w.Body.String(), "password")

	mockUserUC.AssertExpectations(t)
}

// TestRegisterHandler_Error_InvalidInput tests structural validation failures.
func TestRegisterHandler_Error_InvalidInput(t *testing.T) {
	testCases := []struct {
		name string
		body map[string]string
	}{
		{"missing_email", map[string]string{"name": "Alice", "password": "Sup3rSecret"}},
		{"bad_email", map[string]string{"name": "Alice", "email": "not-an-email", "password": "Sup3rSecret"}},
		{"short_password", map[string]string{"name": "Alice", "email": "alice@example.com", "password": "short"}},
		{"blank_name", map[string]string{"name": "   ", "email": "alice@example.com", "password": "Sup3rSecret"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockUserUC := &mockUserUseCase{}
			mockTokenUC := &mockTokenUseCase{}
			handler := NewAuthHandler(mockUserUC, mockTokenUC, createTestLogger())

			router := createAuthRouter(handler, mockTokenUC)
			w := postJSON(router, "/v1/auth/register", tc.body, nil)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			mockUserUC.AssertNotCalled(t, "Register")
		})
	}
}

// TestLoginHandler_Success tests the credential-to-token-pair exchange.
func TestLoginHandler_Success(t *testing.T) {
	mockUserUC := &mockUserUseCase{}
	mockTokenUC := &mockTokenUseCase{}
	handler := NewAuthHandler(mockUserUC, mockTokenUC, createTestLogger())

	userID := uuid.Must(uuid.NewV7())
	user := &userDomain.User{ID: userID, Email: "alice@example.com"}
	pair := testTokenPair()

	mockUserUC.On("Authenticate", mock.Anything, "alice@example.com", "Sup3rSecret").
		Return(user, nil).Once()
	mockTokenUC.On("Mint", mock.Anything, userID).Return(pair, nil).Once()

	router := createAuthRouter(handler, mockTokenUC)
	w := postJSON(router, "/v1/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "Sup3rSecret",
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, pair.AccessToken, response["access_token"])
	assert.Equal(t, pair.RefreshToken, response["refresh_token"])
	assert.Equal(t, "Bearer", response["token_type"])

	mockUserUC.AssertExpectations(t)
	mockTokenUC.AssertExpectations(t)
}

// TestLoginHandler_Error_InvalidCredentials tests that bad credentials yield
// 401 without minting anything.
func TestLoginHandler_Error_InvalidCredentials(t *testing.T) {
	mockUserUC := &mockUserUseCase{}
	mockTokenUC := &mockTokenUseCase{}
	handler := NewAuthHandler(mockUserUC, mockTokenUC, createTestLogger())

	mockUserUC.On("Authenticate", mock.Anything, "alice@example.com", "wrong").
		Return(nil, userDomain.ErrInvalidCredentials).Once()

	router := createAuthRouter(handler, mockTokenUC)
	w := postJSON(router, "/v1/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockTokenUC.AssertNotCalled(t, "Mint")
	mockUserUC.AssertExpectations(t)
}

// TestRefreshHandler_Success tests refresh token rotation: the used refresh
// token is revoked before a new pair comes back.
func TestRefreshHandler_Success(t *testing.T) {
	mockUserUC := &mockUserUseCase{}
	mockTokenUC := &mockTokenUseCase{}
	handler := NewAuthHandler(mockUserUC, mockTokenUC, createTestLogger())

	userID := uuid.Must(uuid.NewV7())
	claims := testClaims(userID)
	claims.Kind = authDomain.TokenKindRefresh
	pair := testTokenPair()

	mockTokenUC.On("Validate", mock.Anything, "old.refresh.token", authDomain.TokenKindRefresh).
		Return(claims, nil).Once()
	mockTokenUC.On("Revoke", mock.Anything, "old.refresh.token", "refresh_rotation", mock.Anything).
		Return(nil).Once()
	mockTokenUC.On("Mint", mock.Anything, userID).Return(pair, nil).Once()

	router := createAuthRouter(handler, mockTokenUC)
	w := postJSON(router, "/v1/auth/refresh", map[string]string{
		"refresh_token": "old.refresh.token",
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, pair.AccessToken, response["access_token"])

	mockTokenUC.AssertExpectations(t)
}

// TestRefreshHandler_Error_RejectedToken tests that an invalid refresh token
// yields 401 and no rotation happens.
func TestRefreshHandler_Error_RejectedToken(t *testing.T) {
	mockUserUC := &mockUserUseCase{}
	mockTokenUC := &mockTokenUseCase{}
	handler := NewAuthHandler(mockUserUC, mockTokenUC, createTestLogger())

	mockTokenUC.On("Validate", mock.Anything, "bad.refresh.token", authDomain.TokenKindRefresh).
		Return(nil, authDomain.ErrTokenRevoked).Once()

	router := createAuthRouter(handler, mockTokenUC)
	w := postJSON(router, "/v1/auth/refresh", map[string]string{
		"refresh_token": "bad.refresh.token",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockTokenUC.AssertNotCalled(t, "Revoke")
	mockTokenUC.AssertNotCalled(t, "Mint")
	mockTokenUC.AssertExpectations(t)
}

// TestRefreshHandler_Error_StoreUnavailable tests fail-closed behavior when
// the revocation store cannot be reached.
func TestRefreshHandler_Error_StoreUnavailable(t *testing.T) {
	mockUserUC := &mockUserUseCase{}
	mockTokenUC := &mockTokenUseCase{}
	handler := NewAuthHandler(mockUserUC, mockTokenUC, createTestLogger())

	mockTokenUC.On("Validate", mock.Anything, "old.refresh.token", authDomain.TokenKindRefresh).
		Return(nil, authDomain.ErrRevocationUnavailable).Once()

	router := createAuthRouter(handler, mockTokenUC)
	w := postJSON(router, "/v1/auth/refresh", map[string]string{
		"refresh_token": "old.refresh.token",
	}, nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	mockTokenUC.AssertNotCalled(t, "Mint")
}

// TestLogoutHandler_Success tests that logout revokes both the refresh token
// from the body and the access token from the Authorization header.
func TestLogoutHandler_Success(t *testing.T) {
	mockUserUC := &mockUserUseCase{}
	mockTokenUC := &mockTokenUseCase{}
	handler := NewAuthHandler(mockUserUC, mockTokenUC, createTestLogger())

	userID := uuid.Must(uuid.NewV7())
	claims := testClaims(userID)

	mockTokenUC.On("Validate", mock.Anything, "access.jwt.token", authDomain.TokenKindAccess).
		Return(claims, nil).Once()
	mockTokenUC.On("Revoke", mock.Anything, "refresh.jwt.token", "logout", mock.Anything).
		Return(nil).Once()
	mockTokenUC.On("Revoke", mock.Anything, "access.jwt.token", "logout", mock.Anything).
		Return(nil).Once()

	router := createAuthRouter(handler, mockTokenUC)
	w := postJSON(router, "/v1/auth/logout", map[string]string{
		"refresh_token": "refresh.jwt.token",
	}, map[string]string{"Authorization": "Bearer access.jwt.token"})

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockTokenUC.AssertExpectations(t)
}

// TestChangePasswordHandler_Success tests that a password change revokes the
// access token that authenticated it.
func TestChangePasswordHandler_Success(t *testing.T) {
	mockUserUC := &mockUserUseCase{}
	mockTokenUC := &mockTokenUseCase{}
	handler := NewAuthHandler(mockUserUC, mockTokenUC, createTestLogger())

	userID := uuid.Must(uuid.NewV7())
	claims := testClaims(userID)

	mockTokenUC.On("Validate", mock.Anything, "access.jwt.token", authDomain.TokenKindAccess).
		Return(claims, nil).Once()
	mockUserUC.On("ChangePassword", mock.Anything, userID, "Sup3rSecret", "N3wSecret!").
		Return(nil).Once()
	mockTokenUC.On("Revoke", mock.Anything, "access.jwt.token", "password_change", mock.Anything).
		Return(nil).Once()

	router := createAuthRouter(handler, mockTokenUC)
	w := doJSON(router, http.MethodPut, "/v1/auth/password", map[string]string{
		"current_password": "Sup3rSecret",
		"new_password":     "N3wSecret!",
	}, map[string]string{"Authorization": "Bearer access.jwt.token"})

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockUserUC.AssertExpectations(t)
	mockTokenUC.AssertExpectations(t)
}

// TestChangePasswordHandler_Error_WrongCurrentPassword tests that a failed
// verification leaves the session token alone.
func TestChangePasswordHandler_Error_WrongCurrentPassword(t *testing.T) {
	mockUserUC := &mockUserUseCase{}
	mockTokenUC := &mockTokenUseCase{}
	handler := NewAuthHandler(mockUserUC, mockTokenUC, createTestLogger())

	userID := uuid.Must(uuid.NewV7())
	claims := testClaims(userID)

	mockTokenUC.On("Validate", mock.Anything, "access.jwt.token", authDomain.TokenKindAccess).
		Return(claims, nil).Once()
	mockUserUC.On("ChangePassword", mock.Anything, userID, "wrong", "N3wSecret!").
		Return(userDomain.ErrInvalidCredentials).Once()

	router := createAuthRouter(handler, mockTokenUC)
	w := doJSON(router, http.MethodPut, "/v1/auth/password", map[string]string{
		"current_password": "wrong",
		"new_password":     "N3wSecret!",
	}, map[string]string{"Authorization": "Bearer access.jwt.token"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockTokenUC.AssertNotCalled(t, "Revoke")
	mockUserUC.AssertExpectations(t)
}

// TestLogoutHandler_Error_Unauthenticated tests that logout requires a valid
// access token.
func TestLogoutHandler_Error_Unauthenticated(t *testing.T) {
	mockUserUC := &mockUserUseCase{}
	mockTokenUC := &mockTokenUseCase{}
	handler := NewAuthHandler(mockUserUC, mockTokenUC, createTestLogger())

	router := createAuthRouter(handler, mockTokenUC)
	w := postJSON(router, "/v1/auth/logout", map[string]string{
		"refresh_token": "refresh.jwt.token",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockTokenUC.AssertNotCalled(t, "Revoke")
}
