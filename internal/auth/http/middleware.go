package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/healthtracker/backend/internal/auth/domain"
	authUseCase "github.com/healthtracker/backend/internal/auth/usecase"
	apperrors "github.com/healthtracker/backend/internal/errors"
	"github.com/healthtracker/backend/internal/httputil"
)

// AuthenticationMiddleware provides authentication via Bearer token in the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Validates the token as an access token using tokenUseCase.Validate()
// 3. Stores the verified claims in the request context
// 4. Allows downstream handlers to access the user via GetClaims()/GetUserID()
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer")
//
// Error handling:
//   - Missing Authorization header → 401 Unauthorized
//   - Malformed Authorization header → 401 Unauthorized
//   - Invalid/expired/revoked token → 401 Unauthorized (from TokenUseCase.Validate)
//   - Revocation store unreachable → 503 Service Unavailable
//   - Other errors → 500 Internal Server Error
//
// Usage:
//
//	router.Use(AuthenticationMiddleware(tokenUseCase, logger))
//	router.GET("/protected", func(c *gin.Context) {
//	    userID, ok := GetUserID(c.Request.Context())
//	    if !ok {
//	        // Should never happen if middleware is working correctly
//	        c.JSON(401, gin.H{"error": "unauthorized"})
//	        return
//	    }
//	    // Use userID to scope the request
//	})
func AuthenticationMiddleware(
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, nil)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, nil)
			c.Abort()
			return
		}

		token := authHeader[len(bearerPrefix):]
		if token == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, nil)
			c.Abort()
			return
		}

		// Validate signature, claims, kind, and revocation status
		claims, err := tokenUseCase.Validate(c.Request.Context(), token, authDomain.TokenKindAccess)
		if err != nil {
			logTokenRejection(logger, err, c.FullPath())
			httputil.HandleErrorGin(c, err, nil)
			c.Abort()
			return
		}

		// Store claims in context for downstream handlers
		ctx := WithClaims(c.Request.Context(), claims)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// logTokenRejection records a failed token validation at a severity matching
// the reason. Expiry is a normal lifecycle event. Signature and claim failures
// are suspicious. A revocation-store outage is an infrastructure fault.
func logTokenRejection(logger *slog.Logger, err error, endpoint string) {
	switch {
	case apperrors.Is(err, authDomain.ErrTokenExpired):
		logger.Debug("token expired", slog.String("endpoint", endpoint))
	case apperrors.Is(err, apperrors.ErrUnavailable):
		logger.Error("token rejected: revocation store unavailable",
			slog.String("endpoint", endpoint),
			slog.Any("error", err))
	default:
		logger.Warn("token rejected",
			slog.String("endpoint", endpoint),
			slog.Any("error", err))
	}
}
